package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mediatag/internal/config"
	"mediatag/internal/history"
	"mediatag/internal/integrity"
	"mediatag/internal/logging"
	"mediatag/internal/media/textparse"
	"mediatag/internal/media/toolexec"
	"mediatag/internal/rewrite"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	baseLogger *slog.Logger

	runID string
	store *history.Store
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		runID:      uuid.NewString(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// loggerValue returns the configured logger tagged with this invocation's run
// ID, falling back to a no-op logger when the log sink cannot be opened.
func (c *commandContext) loggerValue() *slog.Logger {
	c.initLoggers()
	return c.logger
}

// untaggedLogger returns the configured logger without the run ID, for
// components that derive it from the run context themselves.
func (c *commandContext) untaggedLogger() *slog.Logger {
	c.initLoggers()
	return c.baseLogger
}

func (c *commandContext) initLoggers() {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			logger = logging.NewNop()
		}
		c.baseLogger = logger
		c.logger = logger.With(logging.String(logging.FieldRunID, c.runID))
	})
}

// runContext tags ctx with this invocation's run ID.
func (c *commandContext) runContext(cmd *cobra.Command) context.Context {
	return logging.WithRunID(cmd.Context(), c.runID)
}

func (c *commandContext) executor() *toolexec.Runner {
	cfg := c.configValue()
	return toolexec.New(
		toolexec.Binaries{Transform: cfg.Tools.FFmpeg, Inspection: cfg.Tools.FFprobe},
		toolexec.WithTimeout(cfg.ToolTimeout()),
		toolexec.WithLogger(c.loggerValue()),
	)
}

func (c *commandContext) verifier() *integrity.Verifier {
	return integrity.New(c.executor(),
		integrity.WithPatterns(textparse.Default()),
		integrity.WithStreamSelector(c.configValue().Verify.StreamSelector),
		integrity.WithLogger(c.loggerValue()),
	)
}

func (c *commandContext) engine() *rewrite.Engine {
	return rewrite.New(c.executor(),
		rewrite.WithLockDir(c.configValue().Paths.LockDir),
		rewrite.WithLogger(c.loggerValue()),
	)
}

// historyStore opens the ledger once per invocation. Failures are logged and
// yield nil so recording never blocks the actual work.
func (c *commandContext) historyStore() *history.Store {
	if c.store != nil {
		return c.store
	}
	store, err := history.Open(c.configValue())
	if err != nil {
		logging.WarnWithContext(c.loggerValue(), "history ledger unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "outcomes will not be recorded"),
		)
		return nil
	}
	c.store = store
	return store
}

func (c *commandContext) close() {
	if c.store != nil {
		_ = c.store.Close()
		c.store = nil
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
