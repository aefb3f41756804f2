package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/proposal-relay/pkg/logging"
	"github.com/ekaya-inc/proposal-relay/pkg/models"
)

// DefaultTelegramBaseURL is the public Bot API location.
const DefaultTelegramBaseURL = "https://api.telegram.org"

// TelegramNotifier posts the feedback summary through the Telegram Bot API
// using the installation's own bot token and chat id.
type TelegramNotifier struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewTelegramNotifier creates a notifier. A nil httpClient uses http.DefaultClient.
func NewTelegramNotifier(baseURL string, httpClient *http.Client, logger *zap.Logger) *TelegramNotifier {
	if baseURL == "" {
		baseURL = DefaultTelegramBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TelegramNotifier{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.Named("telegram"),
	}
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Notify sends the summary. Installations without bot credentials are skipped.
func (n *TelegramNotifier) Notify(ctx context.Context, installation models.InstallationConfig, fb models.Feedback) error {
	if !installation.HasNotificationTarget() {
		n.logger.Debug("No bot credentials for installation, skipping notification",
			zap.String("card_id", fb.CardID))
		return nil
	}

	query := url.Values{}
	query.Set("chat_id", installation.ChatID)
	query.Set("text", FormatMessage(fb))
	query.Set("parse_mode", "HTML")

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage?%s", n.baseURL, installation.BotToken, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %s", logging.SanitizeError(err))
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call Telegram: %s", logging.SanitizeError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var result sendMessageResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("telegram returned status %d with unparseable body: %s",
			resp.StatusCode, logging.TruncateString(string(body), logging.MaxTextLogLength))
	}
	if !result.OK {
		return fmt.Errorf("telegram: %s", result.Description)
	}

	n.logger.Debug("Notification sent", zap.String("card_id", fb.CardID))
	return nil
}

// FormatMessage renders the HTML summary sent to the chat.
func FormatMessage(fb models.Feedback) string {
	rating := "n/a"
	if fb.Rating != nil {
		rating = strconv.FormatFloat(*fb.Rating, 'f', -1, 64)
	}
	explanation := "n/a"
	if fb.Explanation != nil {
		explanation = *fb.Explanation
	}

	example, _ := json.Marshal(struct {
		CardID     string `json:"card_id"`
		ResultMark string `json:"result_mark"`
	}{CardID: fb.CardID})

	var b strings.Builder
	fmt.Fprintf(&b, "<b>Proposal</b>: %s\n", html.EscapeString(fb.CardDesc))
	fmt.Fprintf(&b, "<b>Rating</b>: %s\n", rating)
	fmt.Fprintf(&b, "<b>AI mind</b>: %s\n", html.EscapeString(explanation))
	fmt.Fprintf(&b, "<b>Card ID</b>: %s\n\n", html.EscapeString(fb.CardID))
	fmt.Fprintf(&b, "<b>Response example</b>: %s\n", html.EscapeString(string(example)))
	fmt.Fprintf(&b, "<b>Marks</b>: %s", models.ResultMarkPlaceholder)
	return b.String()
}
