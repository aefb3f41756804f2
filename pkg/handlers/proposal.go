package handlers

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/proposal-relay/pkg/logging"
	"github.com/ekaya-inc/proposal-relay/pkg/models"
	"github.com/ekaya-inc/proposal-relay/pkg/services"
)

// MaxProposalBodyBytes bounds a webhook delivery. Trello payloads are a few KB.
const MaxProposalBodyBytes = 1 << 20

// ProposalHandler receives Trello webhook deliveries.
type ProposalHandler struct {
	service services.ProposalService
	logger  *zap.Logger
}

// NewProposalHandler creates a new ProposalHandler.
func NewProposalHandler(service services.ProposalService, logger *zap.Logger) *ProposalHandler {
	return &ProposalHandler{service: service, logger: logger}
}

// RegisterRoutes registers the webhook callback route.
// Trello checks the callback URL with HEAD before creating a webhook.
func (h *ProposalHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("HEAD /trello/proposal", h.Verify)
	mux.HandleFunc("POST /trello/proposal", h.Receive)
}

// Verify handles HEAD /trello/proposal.
func (h *ProposalHandler) Verify(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Receive handles POST /trello/proposal. The status code is always 200;
// the outcome is reported in the envelope.
func (h *ProposalHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var resp models.ProposalResponse

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxProposalBodyBytes))
	if err != nil {
		h.logger.Error("Failed to read webhook body", zap.String("error", logging.SanitizeError(err)))
		resp = models.ErrorResponse(logging.SanitizeError(err))
	} else {
		resp = h.service.Handle(r.Context(), body)
	}

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode proposal response", zap.Error(err))
	}
}
