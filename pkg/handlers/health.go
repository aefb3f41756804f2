package handlers

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/proposal-relay/pkg/config"
	"github.com/ekaya-inc/proposal-relay/pkg/logging"
)

const storePingTimeout = 2 * time.Second

// StorePinger reports whether the keyed store can be reached.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// PingResponse contains service status and version information.
type PingResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Service     string `json:"service"`
	GoVersion   string `json:"go_version"`
	Hostname    string `json:"hostname"`
	Environment string `json:"environment"`
	Store       string `json:"store"`
	StoreStatus string `json:"store_status"`
	Ledger      string `json:"ledger"`
	Rating      string `json:"rating"`
	Telegram    bool   `json:"telegram"`
}

// HealthHandler handles liveness, readiness and ping endpoints.
type HealthHandler struct {
	cfg    *config.Config
	store  StorePinger
	logger *zap.Logger
}

// NewHealthHandler creates a HealthHandler. store may be nil, in which case
// the store is reported as reachable.
func NewHealthHandler(cfg *config.Config, store StorePinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, store: store, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /health requests. It only reports that the process is up.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready handles GET /ready requests: 200 when the store answers, 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.pingStore(r.Context()); err != nil {
		h.logger.Warn("Store not reachable",
			zap.String("store", h.cfg.Store.Backend),
			zap.String("error", logging.SanitizeError(err)))
		http.Error(w, "store unreachable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ping handles GET /ping requests.
// Returns service information, the active store backend and whether it answers.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		http.Error(w, "failed to get hostname", http.StatusInternalServerError)
		return
	}

	storeStatus := "ok"
	if err := h.pingStore(r.Context()); err != nil {
		storeStatus = "unreachable"
	}

	response := PingResponse{
		Status:      "ok",
		Version:     h.cfg.Version,
		Service:     "proposal-relay",
		GoVersion:   runtime.Version(),
		Hostname:    hostname,
		Environment: h.cfg.Env,
		Store:       h.cfg.Store.Backend,
		StoreStatus: storeStatus,
		Ledger:      h.cfg.Ledger.Strategy,
		Rating:      h.cfg.Rating.Provider + "/" + h.cfg.Rating.Model,
		Telegram:    h.cfg.Notify.TelegramEnabled,
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}

func (h *HealthHandler) pingStore(ctx context.Context) error {
	if h.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, storePingTimeout)
	defer cancel()
	return h.store.Ping(ctx)
}
