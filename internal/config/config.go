// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and TASKFLOW_* environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// UsersFile and TasksFile point at JSON or YAML fixtures. Empty means the
	// built-in data set.
	UsersFile string `koanf:"users_file"`
	TasksFile string `koanf:"tasks_file"`

	// TopN caps the number of recommendations per task.
	TopN int `koanf:"top_n"`

	// SkillWeight and LoadWeight blend skill fit and load factor.
	SkillWeight float64 `koanf:"skill_weight"`
	LoadWeight  float64 `koanf:"load_weight"`

	// WorkerCount sets the number of batch workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory batch job queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize sets how many assignment request ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxBatchSize caps POST /recommendations/batch.
	MaxBatchSize int `koanf:"max_batch_size"`

	// RecommendLatencyMinMS and RecommendLatencyMaxMS simulate a slow issue
	// tracker in front of directory-backed recommendations. Zero disables it.
	RecommendLatencyMinMS int `koanf:"recommend_latency_min_ms"`
	RecommendLatencyMaxMS int `koanf:"recommend_latency_max_ms"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		Addr:         ":9080",
		TopN:         3,
		SkillWeight:  0.7,
		LoadWeight:   0.3,
		WorkerCount:  runtime.NumCPU(),
		QueueSize:    1024,
		DedupeSize:   50_000,
		MaxBatchSize: 100,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TopN < 1:
		return fmt.Errorf("%w: top_n must be at least 1, got %d", ErrInvalidConfig, c.TopN)
	case c.SkillWeight < 0 || c.LoadWeight < 0:
		return fmt.Errorf("%w: weights must not be negative", ErrInvalidConfig)
	case c.SkillWeight == 0 && c.LoadWeight == 0:
		return fmt.Errorf("%w: skill_weight and load_weight are both zero", ErrInvalidConfig)
	case c.RecommendLatencyMinMS < 0 || c.RecommendLatencyMinMS > c.RecommendLatencyMaxMS:
		return fmt.Errorf("%w: recommend latency bounds %d..%d", ErrInvalidConfig, c.RecommendLatencyMinMS, c.RecommendLatencyMaxMS)
	}
	return nil
}

// RecommendLatency returns the latency bounds as durations.
func (c *Config) RecommendLatency() (min, max time.Duration) {
	return time.Duration(c.RecommendLatencyMinMS) * time.Millisecond,
		time.Duration(c.RecommendLatencyMaxMS) * time.Millisecond
}
