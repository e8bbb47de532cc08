// Package service provides the core business service that implements
// the dependencies required by the HTTP API, the MCP server and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/taskflow/internal/adapters/fixtures"
	"github.com/okian/taskflow/internal/adapters/mq/queue"
	workerpool "github.com/okian/taskflow/internal/adapters/mq/worker"
	"github.com/okian/taskflow/internal/adapters/repository"
	"github.com/okian/taskflow/internal/domain/dedupe"
	"github.com/okian/taskflow/internal/domain/model"
	"github.com/okian/taskflow/internal/domain/scoring"
	"github.com/okian/taskflow/internal/domain/types"
	"github.com/okian/taskflow/pkg/logger"
	"github.com/okian/taskflow/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize    = 1024
	defaultDedupeSize   = 50_000
	defaultMaxBatchSize = 100
)

// Service wires the scoring engine to the team directory and the batch
// worker pool.
type Service struct {
	mu sync.RWMutex

	// Core components
	engine     *scoring.Engine
	directory  repository.Store
	deduper    dedupe.Deduper
	jobQueue   *queue.InMemoryQueue
	workerPool *workerpool.Pool

	// Assignment results by request id, replayed for retried requests.
	resultsMu    sync.Mutex
	results      map[string]types.AssignResult
	resultsOrder []string

	// Configuration
	data         *fixtures.DataSet
	source       string
	workerCount  int
	queueSize    int
	dedupeSize   int
	maxBatchSize int
	latencyMin   time.Duration
	latencyMax   time.Duration

	// State
	started bool
	cancel  context.CancelFunc

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		engine:       scoring.NewEngine(),
		workerCount:  runtime.NumCPU(),
		queueSize:    defaultQueueSize,
		dedupeSize:   defaultDedupeSize,
		maxBatchSize: defaultMaxBatchSize,
		results:      make(map[string]types.AssignResult),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the directory and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting recommendation service...")

	if s.directory == nil {
		ds := fixtures.Default()
		if s.data != nil {
			ds = *s.data
		}
		dir, err := repository.NewDirectory(ds.Users, ds.Tasks)
		if err != nil {
			return fmt.Errorf("build directory: %w", err)
		}
		s.directory = dir
		s.source = ds.Source
	} else if s.source == "" {
		s.source = fixtures.SourceFixtures
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, workerpool.RecommenderFunc(s.recommend))
	s.workerPool.Start(runCtx)

	users, tasks := s.directory.Count(ctx)
	s.started = true
	s.logger.Info(ctx, "recommendation service started",
		logger.String("source", s.source),
		logger.Int("users", users),
		logger.Int("tasks", tasks),
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
	)

	return nil
}

// Stop gracefully shuts down the service. In-flight jobs observe the
// stopped state and fail fast instead of holding up the shutdown.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	pool, cancel, jobs := s.workerPool, s.cancel, s.jobQueue
	s.mu.Unlock()

	ctx := context.Background()
	s.log().Info(ctx, "stopping recommendation service...")

	cancel()
	if err := pool.Shutdown(ctx); err != nil {
		s.log().Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}
	for _, job := range jobs.Drain() {
		job.Respond(queue.Result{Err: ErrNotStarted})
	}

	s.log().Info(ctx, "recommendation service stopped")
}

// running returns the directory when the service is started.
func (s *Service) running() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.directory, nil
}

// Recommend ranks the directory's users for the task with taskKey.
func (s *Service) Recommend(ctx context.Context, taskKey string) (types.TaskRecommendations, error) {
	dir, err := s.running()
	if err != nil {
		return types.TaskRecommendations{}, err
	}
	task, err := dir.Task(ctx, taskKey)
	if err != nil {
		return types.TaskRecommendations{}, err
	}
	recs, err := s.rank(ctx, &task, dir.Users(ctx), true)
	if err != nil {
		return types.TaskRecommendations{}, err
	}
	return types.TaskRecommendations{
		Task:            task,
		Recommendations: types.Entries(recs),
		GeneratedAt:     time.Now().UTC(),
	}, nil
}

// RecommendTask ranks an ad hoc roster for an ad hoc task. It does not
// touch the directory and works whether or not the service is started.
func (s *Service) RecommendTask(ctx context.Context, task model.Task, roster []model.Candidate) ([]types.Entry, error) {
	recs, err := s.rank(ctx, &task, roster, false)
	if err != nil {
		return nil, err
	}
	return types.Entries(recs), nil
}

// recommend is the worker pool's job: rank the directory for one key.
func (s *Service) recommend(ctx context.Context, taskKey string) ([]scoring.Recommendation, error) {
	dir, err := s.running()
	if err != nil {
		return nil, err
	}
	task, err := dir.Task(ctx, taskKey)
	if err != nil {
		return nil, err
	}
	return s.rank(ctx, &task, dir.Users(ctx), true)
}

// rank runs the engine with metrics, optionally behind the artificial latency.
func (s *Service) rank(ctx context.Context, task *model.Task, roster []model.Candidate, delay bool) ([]scoring.Recommendation, error) {
	if delay {
		if err := s.simulateLatency(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	recs, err := s.engine.Recommend(task, roster)
	metrics.RecordRecommendationLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordScoringError(errorKind(err))
		s.log().Warn(ctx, "recommendation failed",
			logger.String("task", task.Key),
			logger.Error(err),
		)
		return nil, err
	}
	metrics.RecordRecommendation()
	return recs, nil
}

func (s *Service) simulateLatency(ctx context.Context) error {
	if s.latencyMax <= 0 {
		return nil
	}
	d := s.latencyMin
	if span := s.latencyMax - s.latencyMin; span > 0 {
		d += rand.N(span + 1)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RecommendBatch ranks several tasks through the worker pool. No keys
// means every unassigned task. Results keep the request order; unknown keys
// and scoring failures are reported per task.
func (s *Service) RecommendBatch(ctx context.Context, taskKeys []string) (types.BatchResult, error) {
	dir, err := s.running()
	if err != nil {
		return types.BatchResult{}, err
	}
	s.mu.RLock()
	jobs := s.jobQueue
	s.mu.RUnlock()

	batch := types.BatchResult{
		BatchID: uuid.NewString(),
		Results: []types.TaskRecommendations{},
		Errors:  []types.BatchError{},
	}

	var tasks []model.Task
	if len(taskKeys) == 0 {
		tasks = dir.UnassignedTasks(ctx)
	} else {
		seen := make(map[string]struct{}, len(taskKeys))
		for _, key := range taskKeys {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			task, err := dir.Task(ctx, key)
			if err != nil {
				batch.Errors = append(batch.Errors, types.BatchError{TaskKey: key, Message: err.Error()})
				continue
			}
			tasks = append(tasks, task)
		}
	}
	if len(tasks) > s.maxBatchSize {
		return types.BatchResult{}, fmt.Errorf("%w: %d tasks, limit %d", ErrBatchTooLarge, len(tasks), s.maxBatchSize)
	}

	reply := make(chan queue.Result, len(tasks))
	for i := range tasks {
		job := queue.Job{
			BatchID:    batch.BatchID,
			TaskKey:    tasks[i].Key,
			EnqueuedAt: time.Now(),
			Reply:      reply,
		}
		if !jobs.Enqueue(ctx, job) {
			// Jobs already queued still reply into the buffered channel.
			return types.BatchResult{}, enqueueError(ctx, jobs)
		}
	}

	byKey := make(map[string]queue.Result, len(tasks))
	for len(byKey) < len(tasks) {
		select {
		case r := <-reply:
			byKey[r.TaskKey] = r
		case <-ctx.Done():
			return types.BatchResult{}, ctx.Err()
		}
	}

	now := time.Now().UTC()
	for i := range tasks {
		r := byKey[tasks[i].Key]
		if r.Err != nil {
			batch.Errors = append(batch.Errors, types.BatchError{TaskKey: r.TaskKey, Message: r.Err.Error()})
			continue
		}
		batch.Results = append(batch.Results, types.TaskRecommendations{
			Task:            tasks[i],
			Recommendations: types.Entries(r.Recommendations),
			GeneratedAt:     now,
		})
	}

	s.log().Info(ctx, "batch recommended",
		logger.String("batch", batch.BatchID),
		logger.Int("tasks", len(tasks)),
		logger.Int("errors", len(batch.Errors)),
	)
	return batch, nil
}

// enqueueError explains why q refused a job. A closed queue means the
// service stopped underneath the caller.
func enqueueError(ctx context.Context, q *queue.InMemoryQueue) error {
	switch {
	case q.IsClosed():
		return ErrNotStarted
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return ErrBackpressure
	}
}

// Assign hands a task to a user. Requests carrying a request id already
// applied return the original result with Replayed set; an empty id is
// never deduplicated.
func (s *Service) Assign(ctx context.Context, requestID, taskKey, username string) (types.AssignResult, error) {
	dir, err := s.running()
	if err != nil {
		return types.AssignResult{}, err
	}

	idempotent := requestID != ""
	if !idempotent {
		requestID = uuid.NewString()
	} else if s.deduper.SeenAndRecord(ctx, requestID) {
		metrics.RecordAssignmentDuplicate()
		if res, ok := s.result(requestID); ok {
			res.Replayed = true
			return res, nil
		}
		return types.AssignResult{}, fmt.Errorf("%w: %s", ErrDuplicateRequest, requestID)
	}

	a, err := dir.Assign(ctx, taskKey, username)
	if err != nil {
		if idempotent {
			// Let the caller retry a request that changed nothing.
			s.deduper.Unrecord(ctx, requestID)
		}
		return types.AssignResult{}, err
	}

	res := types.AssignResult{RequestID: requestID, Assignment: a}
	if idempotent {
		s.remember(requestID, res)
	}
	metrics.RecordAssignment()
	s.log().Info(ctx, "task assigned",
		logger.String("task", a.TaskKey),
		logger.String("assignee", a.Assignee),
		logger.Float64("storyPoints", a.StoryPoints),
		logger.String("request", requestID),
	)
	return res, nil
}

func (s *Service) result(requestID string) (types.AssignResult, bool) {
	s.resultsMu.Lock()
	defer s.resultsMu.Unlock()
	res, ok := s.results[requestID]
	return res, ok
}

// remember stores a result, evicting the oldest beyond dedupeSize.
func (s *Service) remember(requestID string, res types.AssignResult) {
	s.resultsMu.Lock()
	defer s.resultsMu.Unlock()
	s.results[requestID] = res
	s.resultsOrder = append(s.resultsOrder, requestID)
	for len(s.resultsOrder) > s.dedupeSize {
		delete(s.results, s.resultsOrder[0])
		s.resultsOrder = slices.Delete(s.resultsOrder, 0, 1)
	}
}

// Workload returns username's workload.
func (s *Service) Workload(ctx context.Context, username string) (model.Workload, error) {
	dir, err := s.running()
	if err != nil {
		return model.Workload{}, err
	}
	return dir.Workload(ctx, username)
}

// CapacityOverview returns the team capacity overview.
func (s *Service) CapacityOverview(ctx context.Context) (model.CapacityOverview, error) {
	dir, err := s.running()
	if err != nil {
		return model.CapacityOverview{}, err
	}
	return dir.CapacityOverview(ctx), nil
}

// Users lists the directory's users.
func (s *Service) Users(ctx context.Context) ([]model.Candidate, error) {
	dir, err := s.running()
	if err != nil {
		return nil, err
	}
	return dir.Users(ctx), nil
}

// User returns one user by username.
func (s *Service) User(ctx context.Context, username string) (model.Candidate, error) {
	dir, err := s.running()
	if err != nil {
		return model.Candidate{}, err
	}
	return dir.User(ctx, username)
}

// Tasks lists the tasks matching filter.
func (s *Service) Tasks(ctx context.Context, filter repository.TaskFilter) ([]model.Task, error) {
	dir, err := s.running()
	if err != nil {
		return nil, err
	}
	return dir.Tasks(ctx, filter), nil
}

// UnassignedTasks lists tasks without an assignee.
func (s *Service) UnassignedTasks(ctx context.Context) ([]model.Task, error) {
	dir, err := s.running()
	if err != nil {
		return nil, err
	}
	return dir.UnassignedTasks(ctx), nil
}

// Task returns one task by key.
func (s *Service) Task(ctx context.Context, key string) (model.Task, error) {
	dir, err := s.running()
	if err != nil {
		return model.Task{}, err
	}
	return dir.Task(ctx, key)
}

// Info describes the data being served.
func (s *Service) Info(ctx context.Context) (types.Info, error) {
	dir, err := s.running()
	if err != nil {
		return types.Info{}, err
	}
	users, tasks := dir.Count(ctx)
	skill, load := s.engine.Weights()
	return types.Info{
		Source:          s.source,
		Users:           users,
		Tasks:           tasks,
		UnassignedTasks: len(dir.UnassignedTasks(ctx)),
		TopN:            s.engine.TopN(),
		SkillWeight:     skill,
		LoadWeight:      load,
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"dedupeSize":   s.dedupeSize,
		"maxBatchSize": s.maxBatchSize,
	}

	if s.started {
		users, tasks := s.directory.Count(ctx)
		stats["source"] = s.source
		stats["queueLength"] = s.jobQueue.Len(ctx)
		stats["users"] = users
		stats["tasks"] = tasks
		stats["requestIDs"] = s.deduper.Size()
		stats["workers"] = s.workerPool.Stats()
	}

	return stats
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	l := s.logger
	s.mu.RUnlock()
	if l == nil {
		return logger.Get()
	}
	return l
}

// errorKind labels a scoring error for metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, scoring.ErrDivisionByZero):
		return "division_by_zero"
	case errors.Is(err, scoring.ErrInvalidInput):
		return "invalid_input"
	default:
		return "other"
	}
}
