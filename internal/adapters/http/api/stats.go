package api

import (
	"context"
	"net/http"

	"github.com/okian/taskflow/internal/domain/types"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// InfoProvider describes the data being served.
type InfoProvider interface {
	Info(ctx context.Context) (types.Info, error)
}

// StatsHandler handles stats and info requests.
type StatsHandler struct {
	statsProvider StatsProvider
	info          InfoProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider, info InfoProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, info: info}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}

// HandleInfo handles GET /info requests.
func (h *StatsHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.info.Info(r.Context())
	if err != nil {
		writeFailure(w, wrap("api.get_info", err))
		return
	}
	writeJSON(w, http.StatusOK, info)
}
