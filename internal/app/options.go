package service

import (
	"time"

	"github.com/okian/taskflow/internal/adapters/fixtures"
	"github.com/okian/taskflow/internal/adapters/repository"
	"github.com/okian/taskflow/internal/domain/scoring"
	"github.com/okian/taskflow/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of batch workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued batch jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many assignment request ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxBatchSize caps the number of tasks in one batch request.
func WithMaxBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.maxBatchSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEngine sets the scoring engine.
func WithEngine(engine *scoring.Engine) Option {
	return func(s *Service) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// WithDataSet sets the users and tasks the directory is built from.
func WithDataSet(ds fixtures.DataSet) Option {
	return func(s *Service) {
		s.data = &ds
	}
}

// WithDirectory uses store instead of building a directory from a data set.
func WithDirectory(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.directory = store
		}
	}
}

// WithRecommendLatency adds a random delay in [min, max] before each
// directory-backed recommendation, to emulate a slow upstream tracker.
// Zero values disable it.
func WithRecommendLatency(min, max time.Duration) Option {
	return func(s *Service) {
		if min >= 0 && max >= min {
			s.latencyMin = min
			s.latencyMax = max
		}
	}
}
