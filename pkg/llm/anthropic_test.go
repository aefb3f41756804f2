package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAnthropicClient_GenerateResponse(t *testing.T) {
	var body map[string]any
	var path, apiKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		apiKey = r.Header.Get("X-Api-Key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": [{"type": "text", "text": "{\"rating\": 7, \"explanation\": \"Solid\"}"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 30, "output_tokens": 10}
		}`))
	}))
	defer server.Close()

	client, err := NewAnthropicClient(&AnthropicConfig{
		Endpoint: server.URL + "/v1",
		Model:    "claude-3-5-haiku-latest",
		APIKey:   "sk-ant-test",
	}, zap.NewNop())
	require.NoError(t, err)

	result, err := client.GenerateResponse(context.Background(), "rate this", "be JSON", 0, true)
	require.NoError(t, err)

	assert.Equal(t, "/v1/messages", path)
	assert.Equal(t, "sk-ant-test", apiKey)
	assert.Equal(t, `{"rating": 7, "explanation": "Solid"}`, result.Content)
	assert.Equal(t, 40, result.TotalTokens)
	assert.Equal(t, "be JSON", body["system"])
	assert.Equal(t, float64(DefaultAnthropicMaxTokens), body["max_tokens"])
}

func TestAnthropicClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"Internal server error"}}`))
	}))
	defer server.Close()

	client, err := NewAnthropicClient(&AnthropicConfig{Endpoint: server.URL, Model: "m", APIKey: "k"}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.GenerateResponse(context.Background(), "p", "s", 0, true)
	require.Error(t, err)

	var llmErr *Error
	assert.ErrorAs(t, err, &llmErr)
}

func TestNewAnthropicClient_Validation(t *testing.T) {
	_, err := NewAnthropicClient(&AnthropicConfig{Model: "m"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewAnthropicClient(&AnthropicConfig{APIKey: "k"}, zap.NewNop())
	assert.Error(t, err)
}
