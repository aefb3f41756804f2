// Package trello provides a client for the Trello REST API.
package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/proposal-relay/pkg/logging"
)

// DefaultBaseURL is the public Trello API location.
const DefaultBaseURL = "https://api.trello.com"

// Card contains the card fields the relay reads from Trello.
type Card struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Desc  string `json:"desc"`
	Cover *Cover `json:"cover,omitempty"`
}

// Cover is the card cover. Color is empty when the card has no colored cover.
type Cover struct {
	Color string `json:"color,omitempty"`
}

// CoverColor returns the cover color, or "" when the card has none.
func (c *Card) CoverColor() string {
	if c == nil || c.Cover == nil {
		return ""
	}
	return c.Cover.Color
}

// Client provides access to the Trello card API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Trello client. A nil httpClient uses
// http.DefaultClient, so no timeout is imposed beyond the transport's own.
func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.Named("trello"),
	}
}

// GetCard fetches a card by ID using the installation's API key and token.
// Returned errors never contain the credentials.
func (c *Client) GetCard(ctx context.Context, cardID, apiKey, apiToken string) (*Card, error) {
	if cardID == "" {
		return nil, fmt.Errorf("card id is required")
	}

	endpoint, err := buildURL(c.baseURL, "1", "cards", cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	query := url.Values{}
	query.Set("key", apiKey)
	query.Set("token", apiToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %s", logging.SanitizeError(err))
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Fetching card from Trello",
		zap.String("url", endpoint),
		zap.String("card_id", cardID))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Trello: %s", logging.SanitizeError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := logging.TruncateString(strings.TrimSpace(string(body)), logging.MaxTextLogLength)
		c.logger.Error("Trello returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("card_id", cardID),
			zap.String("body", text))
		return nil, fmt.Errorf("trello returned status %d: %s", resp.StatusCode, text)
	}

	var card Card
	if err := json.Unmarshal(body, &card); err != nil {
		return nil, fmt.Errorf("failed to parse card response: %w", err)
	}

	return &card, nil
}

// buildURL constructs a URL by parsing the base and joining path segments.
func buildURL(baseURL string, pathSegments ...string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	raw := append([]string{u.Path}, pathSegments...)
	escaped := []string{u.EscapedPath()}
	for _, s := range pathSegments {
		escaped = append(escaped, url.PathEscape(s))
	}
	u.Path = path.Join(raw...)
	u.RawPath = path.Join(escaped...)

	return u.String(), nil
}
