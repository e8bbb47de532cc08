package api

import (
	"context"
	"net/http"

	"github.com/okian/taskflow/internal/domain/model"
)

// CapacityDependencies defines the workload operations.
type CapacityDependencies interface {
	Workload(ctx context.Context, username string) (model.Workload, error)
	CapacityOverview(ctx context.Context) (model.CapacityOverview, error)
}

// CapacityHandler handles workload and capacity requests.
type CapacityHandler struct {
	deps CapacityDependencies
}

// NewCapacityHandler creates a new capacity handler.
func NewCapacityHandler(deps CapacityDependencies) *CapacityHandler {
	return &CapacityHandler{deps: deps}
}

// HandleGetWorkload handles GET /workload/{username} requests.
func (h *CapacityHandler) HandleGetWorkload(w http.ResponseWriter, r *http.Request) {
	workload, err := h.deps.Workload(r.Context(), r.PathValue("username"))
	if err != nil {
		writeFailure(w, wrap("api.get_workload", err))
		return
	}
	writeJSON(w, http.StatusOK, workload)
}

// HandleGetCapacity handles GET /capacity requests.
func (h *CapacityHandler) HandleGetCapacity(w http.ResponseWriter, r *http.Request) {
	overview, err := h.deps.CapacityOverview(r.Context())
	if err != nil {
		writeFailure(w, wrap("api.get_capacity", err))
		return
	}
	writeJSON(w, http.StatusOK, overview)
}
