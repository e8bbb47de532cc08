// Package repository holds the in-memory team directory: the users and tasks
// recommendations are computed from, and the assignments made against them.
package repository

import (
	"context"

	"github.com/okian/taskflow/internal/domain/model"
)

// TaskFilter narrows a task listing. Empty fields match everything.
type TaskFilter struct {
	Project  string
	Assignee string
	Status   string
}

// Store provides read/write access to the team directory.
// Every value returned is a copy; mutating it never affects the store.
type Store interface {
	// Users returns all users in fixture order.
	Users(ctx context.Context) []model.Candidate
	// User returns the user with username or ErrUserNotFound.
	User(ctx context.Context, username string) (model.Candidate, error)
	// Candidate returns the user with id or ErrUserNotFound.
	Candidate(ctx context.Context, id string) (model.Candidate, error)

	// Tasks returns the tasks matching filter in fixture order.
	Tasks(ctx context.Context, filter TaskFilter) []model.Task
	// Task returns the task with key or ErrTaskNotFound.
	Task(ctx context.Context, key string) (model.Task, error)
	// UnassignedTasks returns the tasks without an assignee.
	UnassignedTasks(ctx context.Context) []model.Task

	// Assign hands taskKey to username, moves it to In Progress and adds its
	// story points to the user's current load.
	Assign(ctx context.Context, taskKey, username string) (model.Assignment, error)

	// Workload summarizes username's assigned work and capacity.
	Workload(ctx context.Context, username string) (model.Workload, error)
	// CapacityOverview summarizes every user plus team totals.
	CapacityOverview(ctx context.Context) model.CapacityOverview

	// Count returns the number of users and tasks.
	Count(ctx context.Context) (users, tasks int)
}
