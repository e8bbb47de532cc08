package repository

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/taskflow/internal/domain/model"
	"github.com/okian/taskflow/pkg/metrics"
)

// Directory is an in-memory Store guarded by a single RWMutex. Nothing is
// persisted; assignments are lost when the process exits.
type Directory struct {
	mu         sync.RWMutex
	users      []model.Candidate
	tasks      []model.Task
	byUsername map[string]int
	byID       map[string]int
	byKey      map[string]int

	now   func() time.Time
	newID func() string
}

var _ Store = (*Directory)(nil)

// NewDirectory builds a directory over deep copies of users and tasks.
// Every record is validated; usernames, ids and task keys must be unique.
func NewDirectory(users []model.Candidate, tasks []model.Task, opts ...Option) (*Directory, error) {
	d := &Directory{
		users:      make([]model.Candidate, 0, len(users)),
		tasks:      make([]model.Task, 0, len(tasks)),
		byUsername: make(map[string]int, len(users)),
		byID:       make(map[string]int, len(users)),
		byKey:      make(map[string]int, len(tasks)),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}

	for i := range users {
		u := users[i].Clone()
		if err := u.Validate(); err != nil {
			return nil, err
		}
		if u.Username == "" {
			return nil, fmt.Errorf("%w: user %s has no username", model.ErrInvalidInput, u.ID)
		}
		if _, ok := d.byID[u.ID]; ok {
			return nil, fmt.Errorf("%w: user id %s", ErrDuplicate, u.ID)
		}
		if _, ok := d.byUsername[u.Username]; ok {
			return nil, fmt.Errorf("%w: username %s", ErrDuplicate, u.Username)
		}
		d.byID[u.ID] = len(d.users)
		d.byUsername[u.Username] = len(d.users)
		d.users = append(d.users, u)
	}

	for i := range tasks {
		t := tasks[i].Clone()
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, ok := d.byKey[t.Key]; ok {
			return nil, fmt.Errorf("%w: task key %s", ErrDuplicate, t.Key)
		}
		d.byKey[t.Key] = len(d.tasks)
		d.tasks = append(d.tasks, t)
	}

	d.publishMetrics()
	return d, nil
}

// Users implements Store.Users.
func (d *Directory) Users(ctx context.Context) []model.Candidate {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]model.Candidate, len(d.users))
	for i := range d.users {
		out[i] = d.users[i].Clone()
	}
	return out
}

// User implements Store.User.
func (d *Directory) User(ctx context.Context, username string) (model.Candidate, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	i, ok := d.byUsername[username]
	if !ok {
		return model.Candidate{}, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	return d.users[i].Clone(), nil
}

// Candidate implements Store.Candidate.
func (d *Directory) Candidate(ctx context.Context, id string) (model.Candidate, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	i, ok := d.byID[id]
	if !ok {
		return model.Candidate{}, fmt.Errorf("%w: id %s", ErrUserNotFound, id)
	}
	return d.users[i].Clone(), nil
}

// Tasks implements Store.Tasks.
func (d *Directory) Tasks(ctx context.Context, filter TaskFilter) []model.Task {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]model.Task, 0, len(d.tasks))
	for i := range d.tasks {
		t := &d.tasks[i]
		if filter.Project != "" && t.Project != filter.Project {
			continue
		}
		if filter.Assignee != "" && t.Assignee != filter.Assignee {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, t.Clone())
	}
	return out
}

// Task implements Store.Task.
func (d *Directory) Task(ctx context.Context, key string) (model.Task, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	i, ok := d.byKey[key]
	if !ok {
		return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, key)
	}
	return d.tasks[i].Clone(), nil
}

// UnassignedTasks implements Store.UnassignedTasks.
func (d *Directory) UnassignedTasks(ctx context.Context) []model.Task {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]model.Task, 0, len(d.tasks))
	for i := range d.tasks {
		if !d.tasks[i].IsAssigned() {
			out = append(out, d.tasks[i].Clone())
		}
	}
	return out
}

// Assign implements Store.Assign.
func (d *Directory) Assign(ctx context.Context, taskKey, username string) (model.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return model.Assignment{}, err
	}

	d.mu.Lock()
	ti, ok := d.byKey[taskKey]
	if !ok {
		d.mu.Unlock()
		return model.Assignment{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskKey)
	}
	ui, ok := d.byUsername[username]
	if !ok {
		d.mu.Unlock()
		return model.Assignment{}, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	task := &d.tasks[ti]
	if task.IsAssigned() {
		d.mu.Unlock()
		return model.Assignment{}, fmt.Errorf("%w: %s is assigned to %s", ErrAlreadyAssigned, taskKey, task.Assignee)
	}
	user := &d.users[ui]

	task.Assignee = user.Username
	task.Status = model.StatusInProgress
	user.Capacity.CurrentLoad += task.StoryPoints

	a := model.Assignment{
		ID:                  d.newID(),
		TaskKey:             task.Key,
		Assignee:            user.Username,
		AssigneeDisplayName: user.DisplayName,
		StoryPoints:         task.StoryPoints,
		AssignedAt:          d.now(),
		Task:                task.Clone(),
	}
	d.mu.Unlock()

	d.publishMetrics()
	return a, nil
}

// Workload implements Store.Workload.
func (d *Directory) Workload(ctx context.Context, username string) (model.Workload, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	i, ok := d.byUsername[username]
	if !ok {
		return model.Workload{}, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	return d.workloadLocked(&d.users[i]), nil
}

// CapacityOverview implements Store.CapacityOverview.
func (d *Directory) CapacityOverview(ctx context.Context) model.CapacityOverview {
	d.mu.RLock()
	defer d.mu.RUnlock()

	overview := model.CapacityOverview{Members: make([]model.MemberCapacity, 0, len(d.users))}
	var utilization float64
	for i := range d.users {
		u := &d.users[i]
		w := d.workloadLocked(u)
		overview.Members = append(overview.Members, model.MemberCapacity{
			Username:    u.Username,
			DisplayName: u.DisplayName,
			TimeZone:    u.TimeZone,
			Workload:    w,
		})
		overview.Totals.TotalCapacity += w.PointsPerSprint
		overview.Totals.TotalLoad += w.CurrentLoad
		overview.Totals.TotalAssigned += w.AssignedPoints
		utilization += w.UtilizationPercent
	}
	if n := len(overview.Members); n > 0 {
		overview.Totals.AverageUtilization = round1(utilization / float64(n))
	}
	return overview
}

// Count implements Store.Count.
func (d *Directory) Count(ctx context.Context) (users, tasks int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users), len(d.tasks)
}

// workloadLocked must be called with d.mu held.
func (d *Directory) workloadLocked(u *model.Candidate) model.Workload {
	w := model.Workload{
		Username:        u.Username,
		DisplayName:     u.DisplayName,
		PointsPerSprint: u.Capacity.PointsPerSprint,
		CurrentLoad:     u.Capacity.CurrentLoad,
		AvailablePoints: u.Capacity.Available(),
	}
	for i := range d.tasks {
		if d.tasks[i].Assignee == u.Username {
			w.AssignedTasks++
			w.AssignedPoints += d.tasks[i].StoryPoints
		}
	}
	if u.Capacity.PointsPerSprint > 0 {
		w.UtilizationPercent = round1(100 * u.Capacity.CurrentLoad / u.Capacity.PointsPerSprint)
	}
	w.Band = model.UtilizationBand(w.UtilizationPercent)
	if u.Capacity.PointsPerSprint <= 0 && u.Capacity.CurrentLoad > 0 {
		w.Band = model.BandOverloaded
	}
	return w
}

func (d *Directory) publishMetrics() {
	d.mu.RLock()
	users, tasks := len(d.users), len(d.tasks)
	unassigned := 0
	for i := range d.tasks {
		if !d.tasks[i].IsAssigned() {
			unassigned++
		}
	}
	d.mu.RUnlock()

	metrics.UpdateDirectoryUsers(users)
	metrics.UpdateDirectoryTasks(tasks, unassigned)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
