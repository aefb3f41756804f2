package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/proposal-relay/pkg/models"
)

func testFeedback() models.Feedback {
	rating := 8.0
	explanation := "Popular <request>"
	return models.NewFeedback("card-1", "Add dark mode", &models.RatingResult{
		Rating:      &rating,
		Explanation: &explanation,
	}, models.InstallationConfig{TrelloAPIKey: "k", TrelloAPIToken: "t"})
}

func TestTelegramNotifier_SendsHTMLMessage(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer server.Close()

	n := NewTelegramNotifier(server.URL, server.Client(), zap.NewNop())
	err := n.Notify(context.Background(), models.InstallationConfig{BotToken: "123:abc", ChatID: "-1001"}, testFeedback())
	require.NoError(t, err)

	assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
	assert.Equal(t, "-1001", gotQuery["chat_id"][0])
	assert.Equal(t, "HTML", gotQuery["parse_mode"][0])
	assert.Contains(t, gotQuery["text"][0], "<b>Proposal</b>: Add dark mode")
}

func TestTelegramNotifier_NotOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	n := NewTelegramNotifier(server.URL, server.Client(), zap.NewNop())
	err := n.Notify(context.Background(), models.InstallationConfig{BotToken: "123:abc", ChatID: "1"}, testFeedback())
	require.Error(t, err)
	assert.Equal(t, "telegram: Bad Request: chat not found", err.Error())
}

func TestTelegramNotifier_SkipsWithoutCredentials(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	n := NewTelegramNotifier(server.URL, server.Client(), zap.NewNop())
	err := n.Notify(context.Background(), models.InstallationConfig{BotToken: "123:abc"}, testFeedback())
	require.NoError(t, err)
	assert.False(t, called)
}

func TestTelegramNotifier_TransportErrorHidesBotToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	n := NewTelegramNotifier(url, nil, zap.NewNop())
	err := n.Notify(context.Background(), models.InstallationConfig{BotToken: "123:secret", ChatID: "1"}, testFeedback())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "123:secret")
}

func TestFormatMessage(t *testing.T) {
	msg := FormatMessage(testFeedback())

	assert.Contains(t, msg, "<b>Rating</b>: 8\n")
	assert.Contains(t, msg, "<b>AI mind</b>: Popular &lt;request&gt;")
	assert.Contains(t, msg, "<b>Card ID</b>: card-1")
	assert.Contains(t, msg, `{&#34;card_id&#34;:&#34;card-1&#34;,&#34;result_mark&#34;:&#34;&#34;}`)
	assert.True(t, strings.HasSuffix(msg, "<b>Marks</b>: 🟢 or 🔴"))
}

func TestFormatMessage_MissingFields(t *testing.T) {
	msg := FormatMessage(models.Feedback{CardID: "c", CardDesc: "d"})

	assert.Contains(t, msg, "<b>Rating</b>: n/a")
	assert.Contains(t, msg, "<b>AI mind</b>: n/a")
}

func TestNopNotifier(t *testing.T) {
	assert.NoError(t, NopNotifier{}.Notify(context.Background(), models.InstallationConfig{}, models.Feedback{}))
}
