// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/taskflow/internal/adapters/repository"
	service "github.com/okian/taskflow/internal/app"
	"github.com/okian/taskflow/internal/domain/model"
	"github.com/okian/taskflow/internal/domain/scoring"
	"github.com/okian/taskflow/pkg/logger"
	"github.com/okian/taskflow/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RecommendationDependencies
	AssignDependencies
	DirectoryDependencies
	CapacityDependencies
	InfoProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler         *HealthHandler
	statsHandler          *StatsHandler
	recommendationHandler *RecommendationHandler
	assignHandler         *AssignHandler
	directoryHandler      *DirectoryHandler
	capacityHandler       *CapacityHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:         NewHealthHandler(),
		statsHandler:          NewStatsHandler(statsProvider, deps),
		recommendationHandler: NewRecommendationHandler(deps),
		assignHandler:         NewAssignHandler(deps),
		directoryHandler:      NewDirectoryHandler(deps),
		capacityHandler:       NewCapacityHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleHealth)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /info", MetricsMiddleware(s.statsHandler.HandleInfo, "info"))

	mux.HandleFunc("GET /users", MetricsMiddleware(s.directoryHandler.HandleListUsers, "users"))
	mux.HandleFunc("GET /users/{username}", MetricsMiddleware(s.directoryHandler.HandleGetUser, "user"))
	mux.HandleFunc("GET /tasks", MetricsMiddleware(s.directoryHandler.HandleListTasks, "tasks"))
	mux.HandleFunc("GET /tasks/unassigned", MetricsMiddleware(s.directoryHandler.HandleUnassignedTasks, "tasks_unassigned"))

	mux.HandleFunc("GET /recommendations/{taskKey}", MetricsMiddleware(s.recommendationHandler.HandleGetRecommendations, "recommendations"))
	mux.HandleFunc("POST /recommendations", MetricsMiddleware(s.recommendationHandler.HandlePostRecommendations, "recommendations_adhoc"))
	mux.HandleFunc("POST /recommendations/batch", MetricsMiddleware(s.recommendationHandler.HandlePostBatch, "recommendations_batch"))
	mux.HandleFunc("POST /assign", MetricsMiddleware(s.assignHandler.HandlePostAssign, "assign"))

	mux.HandleFunc("GET /workload/{username}", MetricsMiddleware(s.capacityHandler.HandleGetWorkload, "workload"))
	mux.HandleFunc("GET /capacity", MetricsMiddleware(s.capacityHandler.HandleGetCapacity, "capacity"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v before sending the status, so an unencodable value
// becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		metrics.RecordErrorByComponent("http", "encode_failed")
		logger.Get().Error(context.Background(), "failed to encode response", logger.Error(err))
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Code: "internal_error", Message: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err to its status and error code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, service.ErrBatchTooLarge):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, scoring.ErrDivisionByZero):
		return http.StatusUnprocessableEntity, "invalid_capacity"
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrTaskNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrAlreadyAssigned):
		return http.StatusConflict, "already_assigned"
	case errors.Is(err, service.ErrDuplicateRequest):
		return http.StatusConflict, "duplicate_request"
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
