package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/taskflow/internal/domain/types"
)

// IdempotencyHeader may carry the request id instead of the body.
const IdempotencyHeader = "Idempotency-Key"

// AssignDependencies defines the interface for assignment operations.
type AssignDependencies interface {
	Assign(ctx context.Context, requestID, taskKey, username string) (types.AssignResult, error)
}

// AssignHandler handles assignment requests.
type AssignHandler struct {
	deps AssignDependencies
}

// NewAssignHandler creates a new assign handler.
func NewAssignHandler(deps AssignDependencies) *AssignHandler {
	return &AssignHandler{deps: deps}
}

// assignRequest mirrors the OpenAPI schema for POST /assign.
type assignRequest struct {
	RequestID string `json:"request_id"`
	TaskKey   string `json:"task_key"`
	Assignee  string `json:"assignee"`
}

func (a assignRequest) validate() error {
	switch {
	case strings.TrimSpace(a.TaskKey) == "":
		return errors.New("missing task_key")
	case strings.TrimSpace(a.Assignee) == "":
		return errors.New("missing assignee")
	}
	return nil
}

// HandlePostAssign handles POST /assign requests. A new assignment answers
// 201; a replayed request id answers 200 with the original assignment.
func (h *AssignHandler) HandlePostAssign(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_assign"
	var req assignRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeFailure(w, badRequest(op, err))
		return
	}
	if err := req.validate(); err != nil {
		writeFailure(w, badRequest(op, err))
		return
	}
	if req.RequestID == "" {
		req.RequestID = strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	}

	res, err := h.deps.Assign(r.Context(), req.RequestID, req.TaskKey, req.Assignee)
	if err != nil {
		writeFailure(w, wrap(op, err))
		return
	}
	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}
