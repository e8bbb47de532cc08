// Package cli defines the taskflow command-line interface.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/taskflow/internal/adapters/fixtures"
	service "github.com/okian/taskflow/internal/app"
	"github.com/okian/taskflow/internal/config"
	"github.com/okian/taskflow/internal/domain/scoring"
	"github.com/okian/taskflow/pkg/logger"
	"github.com/spf13/cobra"
)

// All linker flags will be set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// settings carries the resolved configuration shared by subcommands.
type settings struct {
	cfg       *config.Config
	usersFile string
	tasksFile string
	logLevel  string
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	rt := &settings{}

	root := &cobra.Command{
		Use:                "taskflow",
		Short:              "Recommend who should pick up a task.",
		Long:               `taskflow ranks team members for issue-tracker tasks by blending skill fit with remaining sprint capacity.`,
		Version:            version,
		SilenceErrors:      true,
		SilenceUsage:       true,
		DisableSuggestions: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.setup(cmd)
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&rt.usersFile, "users", "", "Users fixture (.json, .yaml); overrides users_file")
	root.PersistentFlags().StringVar(&rt.tasksFile, "tasks", "", "Tasks fixture (.json, .yaml); overrides tasks_file")
	root.PersistentFlags().StringVar(&rt.logLevel, "log-level", "", "Log level: debug, info, warn, error; overrides log_level")

	root.AddCommand(
		newServeCmd(rt),
		newRecommendCmd(rt),
		newCapacityCmd(rt),
		newMCPCmd(rt),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// setup loads config (defaults, TASKFLOW_CONFIG file, TASKFLOW_* env) and
// applies flag overrides, then configures logging on stderr.
func (rt *settings) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	if rt.usersFile != "" {
		cfg.UsersFile = rt.usersFile
	}
	if rt.tasksFile != "" {
		cfg.TasksFile = rt.tasksFile
	}
	if rt.logLevel != "" {
		cfg.LogLevel = rt.logLevel
	}
	rt.cfg = cfg

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

// startService loads the fixtures and starts a service configured from rt.
func (rt *settings) startService(ctx context.Context) (*service.Service, error) {
	ds, err := fixtures.Load(rt.cfg.UsersFile, rt.cfg.TasksFile)
	if err != nil {
		return nil, fmt.Errorf("load fixtures: %w", err)
	}

	latencyMin, latencyMax := rt.cfg.RecommendLatency()
	svc := service.New(
		service.WithLogger(logger.Get().Named("service")),
		service.WithEngine(scoring.NewEngine(
			scoring.WithWeights(rt.cfg.SkillWeight, rt.cfg.LoadWeight),
			scoring.WithTopN(rt.cfg.TopN),
		)),
		service.WithDataSet(ds),
		service.WithWorkerCount(rt.cfg.WorkerCount),
		service.WithQueueSize(rt.cfg.QueueSize),
		service.WithDedupeSize(rt.cfg.DedupeSize),
		service.WithMaxBatchSize(rt.cfg.MaxBatchSize),
		service.WithRecommendLatency(latencyMin, latencyMax),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start service: %w", err)
	}
	return svc, nil
}

// commandTimeout bounds one-shot commands.
const commandTimeout = 30 * time.Second
