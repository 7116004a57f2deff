package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"github.com/xvierd/forest-cli/internal/adapters/git"
	"github.com/xvierd/forest-cli/internal/adapters/notification"
	"github.com/xvierd/forest-cli/internal/adapters/platform"
	"github.com/xvierd/forest-cli/internal/adapters/storage"
	"github.com/xvierd/forest-cli/internal/adapters/wakelock"
	"github.com/xvierd/forest-cli/internal/config"
	"github.com/xvierd/forest-cli/internal/domain"
	"github.com/xvierd/forest-cli/internal/ports"
	"github.com/xvierd/forest-cli/internal/services"
)

// appDeps groups all service-layer dependencies initialized at startup.
type appDeps struct {
	config     *config.Config
	configPath string
	session    domain.SessionConfig
	logger     *slog.Logger
	logFile    io.Closer
	clock      clockwork.Clock
	platform   ports.PlatformClassifier
	journal    ports.Journal
	history    *services.JournalService
	notifier   *notification.Notifier
	wakeLock   ports.WakeLock
	wakeGuard  *services.WakeLockGuard
	git        ports.GitDetector
	workingDir string
}

// app holds all initialized service dependencies.
// Populated by initializeServices() and accessible to all commands.
var app appDeps

// initializeServices sets up all the required services and adapters.
func initializeServices(cmd *cobra.Command) error {
	var err error
	app = appDeps{clock: clockwork.NewRealClock()}

	app.configPath = configPath
	if app.configPath == "" {
		app.configPath, err = config.GetConfigPath()
		if err != nil {
			return err
		}
	}

	// Load configuration
	var loadErr error
	app.config, loadErr = config.Load(app.configPath)
	if loadErr != nil {
		// If config loading fails, use defaults
		app.config = config.DefaultConfig()
	}
	if err := applyFlagOverrides(app.config); err != nil {
		return err
	}

	app.logger, app.logFile, err = newLogger(app.config, logSink(cmd))
	if err != nil {
		return err
	}
	slog.SetDefault(app.logger)
	if loadErr != nil {
		app.logger.Warn("using default configuration", "path", app.configPath, "error", loadErr)
	}

	app.session, err = app.config.ToSessionConfig()
	if err != nil {
		return err
	}

	class, err := app.config.PlatformClass()
	if err != nil {
		return err
	}
	classifier, err := platform.New(class)
	if err != nil {
		return err
	}
	app.platform = classifier
	app.logger.Debug("platform classified", "class", classifier.String())

	// Attempt journal
	app.journal, err = storage.New(app.config.Journal.DSN)
	if err != nil {
		return fmt.Errorf("failed to initialize journal: %w", err)
	}
	app.history = services.NewJournalService(app.journal)
	app.history.SetLogger(app.logger.With("component", "journal"))

	app.notifier = notification.New(&app.config.Notifications, app.logger.With("component", "notify"))

	app.wakeLock = newWakeLock(app.config, app.logger)

	app.workingDir, _ = os.Getwd()
	app.git = git.NewDetector(app.workingDir)

	return nil
}

// cleanupServices closes all resources.
func cleanupServices() error {
	if app.wakeGuard != nil {
		app.wakeGuard.Close()
	}
	if closer, ok := app.wakeLock.(io.Closer); ok {
		_ = closer.Close()
	}
	if app.logFile != nil {
		_ = app.logFile.Close()
	}
	if app.journal != nil {
		return app.journal.Close()
	}
	return nil
}

// newRunner builds a session controller with the standard observers and
// wraps it in a runner. vis may be nil for headless sessions.
func (a *appDeps) newRunner(vis ports.VisibilitySource, observers ...ports.SessionObserver) *services.Runner {
	ctrl := services.NewFocusSessionController(a.session, a.clock, a.platform)
	ctrl.SetLogger(a.logger.With("component", "session"))
	if a.git != nil && a.git.IsAvailable() {
		ctrl.SetGitContext(a.git, a.workingDir)
	}

	ctrl.AddObserver(a.history)
	ctrl.AddObserver(a.notifier)
	a.wakeGuard = services.NewWakeLockGuard(a.wakeLock, a.logger.With("component", "wakelock"))
	ctrl.AddObserver(a.wakeGuard)
	for _, o := range observers {
		ctrl.AddObserver(o)
	}

	runner := services.NewRunner(ctrl, vis)
	runner.SetLogger(a.logger.With("component", "runner"))
	return runner
}

// applyFlagOverrides lets global flags win over the config file.
func applyFlagOverrides(cfg *config.Config) error {
	if platformFlag != "" {
		cfg.Platform.Class = platformFlag
	}
	if logLevelFlag != "" {
		cfg.Logging.Level = logLevelFlag
	}
	if durationFlag != "" {
		d, err := time.ParseDuration(durationFlag)
		if err != nil {
			return fmt.Errorf("invalid --duration %q: %w", durationFlag, err)
		}
		cfg.Session.Duration = config.Duration(d)
	}
	return nil
}

// logSink picks where logs go when no log file is configured. The full
// screen UI owns the terminal, so the root command discards them; other
// commands write to stderr.
func logSink(cmd *cobra.Command) io.Writer {
	if !cmd.HasParent() {
		return io.Discard
	}
	return cmd.ErrOrStderr()
}

// newLogger builds the process logger from the logging settings.
func newLogger(cfg *config.Config, fallback io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, nil, err
	}

	out := fallback
	var closer io.Closer
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closer, nil
}

// newWakeLock connects to the screensaver service when enabled. Hosts
// without a session bus fall back to a no-op lock.
func newWakeLock(cfg *config.Config, logger *slog.Logger) ports.WakeLock {
	if !cfg.Platform.WakeLock {
		return wakelock.Noop{}
	}
	lock, err := wakelock.NewScreenSaver()
	if err != nil {
		logger.Info("wake lock unavailable", "error", err)
		return wakelock.Noop{}
	}
	return lock
}
