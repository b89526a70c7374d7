package botrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"samplebot/internal/audio"
	"samplebot/internal/challenge"
	"samplebot/internal/config"
	"samplebot/internal/deps"
	"samplebot/internal/discord"
	"samplebot/internal/lifecycle"
	"samplebot/internal/logging"
	"samplebot/internal/notifications"
	"samplebot/internal/sample"
	"samplebot/internal/services/dropbox"
)

// ErrAlreadyRunning is returned when another samplebot holds the lock.
var ErrAlreadyRunning = errors.New("another samplebot instance is already running")

// Options configures bot process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the bot and blocks until cmdCtx ends or a termination signal
// arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.ValidateRuntime(); err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("samplebot-%s.log", runID))
	level := cfg.Logging.Level
	if strings.TrimSpace(opts.LogLevel) != "" {
		level = opts.LogLevel
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := logging.UpdatePointer(cfg.Paths.LogDir, "samplebot.log", logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update samplebot.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "samplebot-*.log", Exclude: []string{logPath}},
	)

	lock, err := acquireLock(cfg.LockPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release instance lock", logging.Error(err))
		}
	}()

	logDependencySnapshot(logger, cfg)

	store, err := challenge.Open(cfg)
	if err != nil {
		logger.Error("open challenge store", logging.Error(err))
		return err
	}
	defer store.Close()

	objects, err := dropbox.New(cfg, logger)
	if err != nil {
		return err
	}
	transport, err := discord.New(cfg, logger)
	if err != nil {
		return err
	}
	notifier := notifications.NewService(cfg)
	lc := lifecycle.New(store, notifier, logger)
	samples := sample.NewService(cfg, audio.NewSource(cfg, logger), objects, logger)

	var mentions func() []string
	if cfg.Discord.AcceptMentions {
		mentions = transport.Mentions
	}
	dispatcher, err := newDispatcher(cfg, logger, lc, samples, notifier, mentions)
	if err != nil {
		return err
	}

	logger.Info("samplebot starting",
		logging.String(logging.FieldEventType, "bot_starting"),
		logging.String("prefix", cfg.Discord.Prefix),
		logging.Bool("accept_mentions", cfg.Discord.AcceptMentions),
		logging.Bool("case_insensitive", cfg.Discord.CaseInsensitive),
		logging.Int("max_concurrent", cfg.Dispatch.MaxConcurrent),
		logging.String("database", cfg.DatabasePath()),
		logging.String("log_path", logPath),
	)
	runErr := transport.Run(signalCtx, dispatcher.Dispatch)
	logger.Info("samplebot shutting down; waiting for in-flight commands",
		logging.String(logging.FieldEventType, "bot_stopping"),
	)
	dispatcher.Wait()
	if runErr != nil {
		logger.Error("discord transport stopped", logging.Error(runErr))
		return runErr
	}
	return nil
}

func acquireLock(path string) (*flock.Flock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, path)
	}
	return lock, nil
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	ffmpeg := deps.ResolveFFmpegPath()
	logger.Info("dependency snapshot",
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.Bool("ytdlp_available", binaryAvailable(cfg.Audio.Binary)),
		logging.String("ytdlp_binary", cfg.Audio.Binary),
		logging.Bool("ffmpeg_available", binaryAvailable(ffmpeg)),
		logging.String("ffmpeg_binary", ffmpeg),
		logging.Bool("ntfy_configured", strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""),
		logging.String("samples_path", cfg.Dropbox.SamplesPath),
	)
	for _, missing := range deps.Missing(deps.Check(cfg)) {
		logging.WarnWithContext(logger, "dependency missing", "dependency_missing",
			logging.String("dependency", missing.Name),
			logging.String("detail", missing.Detail),
			logging.String(logging.FieldErrorHint, "install it or set audio.binary"),
			logging.String(logging.FieldImpact, "samples.add and challenge.start will fail"),
		)
	}
}

func binaryAvailable(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}
