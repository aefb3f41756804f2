package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/proposal-relay/pkg/config"
	"github.com/ekaya-inc/proposal-relay/pkg/llm"
	"github.com/ekaya-inc/proposal-relay/pkg/models"
	"github.com/ekaya-inc/proposal-relay/pkg/notify"
	"github.com/ekaya-inc/proposal-relay/pkg/repositories"
	"github.com/ekaya-inc/proposal-relay/pkg/services"
	"github.com/ekaya-inc/proposal-relay/pkg/testhelpers"
	"github.com/ekaya-inc/proposal-relay/pkg/trello"
)

type proposalHandlerTest struct {
	mux    *http.ServeMux
	store  *repositories.MemoryStore
	ledger services.FeedbackLedger
	llm    *llm.MockLLMClient
}

// setupProposalHandler wires the real pipeline against a fake Trello API
// that serves cards with the given cover color.
func setupProposalHandler(t *testing.T, coverColor string) *proposalHandlerTest {
	t.Helper()

	trelloServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "trello-key" || r.URL.Query().Get("token") != "trello-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("invalid key"))
			return
		}
		card := trello.Card{ID: strings.TrimPrefix(r.URL.Path, "/1/cards/")}
		if coverColor != "" {
			card.Cover = &trello.Cover{Color: coverColor}
		}
		_ = json.NewEncoder(w).Encode(card)
	}))
	t.Cleanup(trelloServer.Close)

	logger := zap.NewNop()
	codec := testhelpers.NewTestCodec(t)
	store := repositories.NewMemoryStore()

	token, err := codec.EncodeInstallation(models.InstallationConfig{
		TrelloAPIKey:   "trello-key",
		TrelloAPIToken: "trello-token",
	})
	require.NoError(t, err)
	require.NoError(t, store.Installations().PutToken(context.Background(), "wh-1", token))

	mock := llm.NewMockLLMClientWithContent(`{"rating":8,"explanation":"Popular request"}`)
	ledger := services.NewFeedbackLedger(store.Feedbacks(), codec, config.LedgerConfig{Strategy: config.LedgerOverwrite, MaxAttempts: 1}, logger)
	service := services.NewProposalService(
		store.Installations(),
		codec,
		services.NewCardGate(trello.NewClient(trelloServer.URL, trelloServer.Client(), logger), logger),
		services.NewRatingService(mock, logger),
		ledger,
		notify.NopNotifier{},
		logger,
	)

	mux := http.NewServeMux()
	NewProposalHandler(service, logger).RegisterRoutes(mux)

	return &proposalHandlerTest{mux: mux, store: store, ledger: ledger, llm: mock}
}

func (p *proposalHandlerTest) do(method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/trello/proposal", strings.NewReader(body))
	rec := httptest.NewRecorder()
	p.mux.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.ProposalResponse {
	t.Helper()
	var resp models.ProposalResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestProposalHandler_Head(t *testing.T) {
	p := setupProposalHandler(t, "")

	rec := p.do(http.MethodHead, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestProposalHandler_RatesCard(t *testing.T) {
	p := setupProposalHandler(t, "")

	rec := p.do(http.MethodPost, `{"webhook":{"id":"wh-1"},"action":{"data":{"card":{"id":"card-1","desc":"Add dark mode"}}}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"success","err_description":""}`, rec.Body.String())

	entries, err := p.ledger.List(context.Background(), "wh-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Add dark mode", entries[0].CardDesc)
	assert.Equal(t, 8.0, *entries[0].Rating)
}

func TestProposalHandler_GreenCardSkipped(t *testing.T) {
	p := setupProposalHandler(t, "green")

	rec := p.do(http.MethodPost, `{"webhook":{"id":"wh-1"},"action":{"data":{"card":{"id":"card-1","desc":"Add dark mode"}}}}`)

	assert.Equal(t, models.SuccessResponse(), decodeEnvelope(t, rec))
	assert.Equal(t, 0, p.llm.Calls())
	assert.Equal(t, 0, p.store.Writes())
}

func TestProposalHandler_ErrorsStay200(t *testing.T) {
	p := setupProposalHandler(t, "")

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing webhook id", `{"action":{}}`, "Webhook id not found!"},
		{"unknown installation", `{"webhook":{"id":"wh-2"}}`, "Token not found in remote db!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := p.do(http.MethodPost, tt.body)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, models.ErrorResponse(tt.want), decodeEnvelope(t, rec))
		})
	}
}

func TestProposalHandler_TrelloErrorHidesCredentials(t *testing.T) {
	p := setupProposalHandler(t, "")
	token, err := testhelpers.NewTestCodec(t).EncodeInstallation(models.InstallationConfig{
		TrelloAPIKey:   "wrong-key",
		TrelloAPIToken: "wrong-token",
	})
	require.NoError(t, err)
	require.NoError(t, p.store.Installations().PutToken(context.Background(), "wh-3", token))

	rec := p.do(http.MethodPost, `{"webhook":{"id":"wh-3"},"action":{"data":{"card":{"id":"card-1","desc":"x"}}}}`)

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, models.StatusError, resp.Status)
	assert.Contains(t, resp.ErrDescription, "401")
	assert.NotContains(t, resp.ErrDescription, "wrong-key")
	assert.NotContains(t, resp.ErrDescription, "wrong-token")
}

func TestProposalHandler_BodyTooLarge(t *testing.T) {
	p := setupProposalHandler(t, "")

	rec := p.do(http.MethodPost, strings.Repeat("a", MaxProposalBodyBytes+1))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, models.StatusError, resp.Status)
	assert.Contains(t, resp.ErrDescription, "too large")
}

func TestProposalHandler_MethodNotAllowed(t *testing.T) {
	p := setupProposalHandler(t, "")

	rec := p.do(http.MethodGet, "")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
