package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/okian/taskflow/internal/adapters/fixtures"
	"github.com/okian/taskflow/internal/domain/model"
	"github.com/okian/taskflow/internal/domain/types"
)

const maxBodyBytes = 1 << 20

// RecommendationDependencies defines the interface for ranking operations.
type RecommendationDependencies interface {
	Recommend(ctx context.Context, taskKey string) (types.TaskRecommendations, error)
	RecommendTask(ctx context.Context, task model.Task, roster []model.Candidate) ([]types.Entry, error)
	RecommendBatch(ctx context.Context, taskKeys []string) (types.BatchResult, error)
}

// RecommendationHandler handles recommendation requests.
type RecommendationHandler struct {
	deps RecommendationDependencies
}

// NewRecommendationHandler creates a new recommendation handler.
func NewRecommendationHandler(deps RecommendationDependencies) *RecommendationHandler {
	return &RecommendationHandler{deps: deps}
}

// HandleGetRecommendations handles GET /recommendations/{taskKey} requests.
func (h *RecommendationHandler) HandleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_recommendations"
	key := strings.TrimSpace(r.PathValue("taskKey"))
	if key == "" {
		writeFailure(w, badRequest(op, ErrMissingPath))
		return
	}
	res, err := h.deps.Recommend(r.Context(), key)
	if err != nil {
		writeFailure(w, wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type adhocResponse struct {
	Task            model.Task    `json:"task"`
	Recommendations []types.Entry `json:"recommendations"`
}

// HandlePostRecommendations handles POST /recommendations requests: a task
// and a roster scored without touching the directory.
func (h *RecommendationHandler) HandlePostRecommendations(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_recommendations"
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeFailure(w, badRequest(op, err))
		return
	}
	task, roster, err := fixtures.DecodeRequest(body)
	if err != nil {
		writeFailure(w, wrap(op, err))
		return
	}
	entries, err := h.deps.RecommendTask(r.Context(), task, roster)
	if err != nil {
		writeFailure(w, wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, adhocResponse{Task: task, Recommendations: entries})
}

// batchRequest mirrors the OpenAPI schema for POST /recommendations/batch.
type batchRequest struct {
	TaskKeys []string `json:"task_keys"`
}

// HandlePostBatch handles POST /recommendations/batch requests. An empty
// body or key list ranks every unassigned task.
func (h *RecommendationHandler) HandlePostBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_batch"
	var req batchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeFailure(w, badRequest(op, err))
		return
	}
	res, err := h.deps.RecommendBatch(r.Context(), req.TaskKeys)
	if err != nil {
		writeFailure(w, wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
