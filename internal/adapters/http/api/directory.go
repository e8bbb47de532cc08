package api

import (
	"context"
	"net/http"

	"github.com/okian/taskflow/internal/adapters/repository"
	"github.com/okian/taskflow/internal/domain/model"
)

// DirectoryDependencies defines the read operations over users and tasks.
type DirectoryDependencies interface {
	Users(ctx context.Context) ([]model.Candidate, error)
	User(ctx context.Context, username string) (model.Candidate, error)
	Tasks(ctx context.Context, filter repository.TaskFilter) ([]model.Task, error)
	UnassignedTasks(ctx context.Context) ([]model.Task, error)
}

// DirectoryHandler handles user and task listings.
type DirectoryHandler struct {
	deps DirectoryDependencies
}

// NewDirectoryHandler creates a new directory handler.
func NewDirectoryHandler(deps DirectoryDependencies) *DirectoryHandler {
	return &DirectoryHandler{deps: deps}
}

// HandleListUsers handles GET /users requests.
func (h *DirectoryHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.deps.Users(r.Context())
	if err != nil {
		writeFailure(w, wrap("api.list_users", err))
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleGetUser handles GET /users/{username} requests.
func (h *DirectoryHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.deps.User(r.Context(), r.PathValue("username"))
	if err != nil {
		writeFailure(w, wrap("api.get_user", err))
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleListTasks handles GET /tasks?project=&assignee=&status= requests.
func (h *DirectoryHandler) HandleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tasks, err := h.deps.Tasks(r.Context(), repository.TaskFilter{
		Project:  q.Get("project"),
		Assignee: q.Get("assignee"),
		Status:   q.Get("status"),
	})
	if err != nil {
		writeFailure(w, wrap("api.list_tasks", err))
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// HandleUnassignedTasks handles GET /tasks/unassigned requests.
func (h *DirectoryHandler) HandleUnassignedTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.deps.UnassignedTasks(r.Context())
	if err != nil {
		writeFailure(w, wrap("api.unassigned_tasks", err))
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}
