// Package daemonrun boots the daemon process: logging, queue store,
// workflow stages, IPC, and signal handling.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/andigenesis/brainrot-generator/internal/config"
	"github.com/andigenesis/brainrot-generator/internal/daemon"
	"github.com/andigenesis/brainrot-generator/internal/ipc"
	"github.com/andigenesis/brainrot-generator/internal/logging"
	"github.com/andigenesis/brainrot-generator/internal/narration"
	"github.com/andigenesis/brainrot-generator/internal/notifications"
	"github.com/andigenesis/brainrot-generator/internal/organizer"
	"github.com/andigenesis/brainrot-generator/internal/planner"
	"github.com/andigenesis/brainrot-generator/internal/queue"
	"github.com/andigenesis/brainrot-generator/internal/render"
	"github.com/andigenesis/brainrot-generator/internal/stage"
	"github.com/andigenesis/brainrot-generator/internal/transform"
	"github.com/andigenesis/brainrot-generator/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the generator daemon runtime loop.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("brainrot-%s.log", runID))
	eventsPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("brainrot-%s.events", runID))
	logHub := logging.NewStreamHub(4096)
	eventArchive, archiveErr := logging.NewEventArchive(eventsPath)
	if archiveErr != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to initialize log archive: %v\n", archiveErr)
	} else if eventArchive != nil {
		logHub.AddSink(eventArchive)
	}

	logger, err := logging.New(logging.Options{
		Level:            opts.LogLevel,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
		Stream:           logHub,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(logger, cfg)
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update brainrot.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "brainrot-*.log", Exclude: []string{logPath}},
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "brainrot-*.events", Exclude: []string{eventsPath}},
		logging.RetentionTarget{Dir: filepath.Join(cfg.Paths.LogDir, "jobs"), Pattern: "*.log"},
	)
	pidPath := filepath.Join(cfg.Paths.LogDir, "brainrot.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return err
	}
	defer store.Close()

	notifier := notifications.NewService(cfg)
	workflowManager := workflow.NewManagerWithOptions(cfg, store, logger, notifier, logHub)
	registerStages(workflowManager, cfg, store, logger, notifier)

	d, err := daemon.New(daemon.Options{
		Config:     cfg,
		Store:      store,
		Logger:     logger,
		Workflow:   workflowManager,
		Notifier:   notifier,
		LogPath:    logPath,
		LogHub:     logHub,
		LogArchive: eventArchive,
	})
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	socketPath := filepath.Join(cfg.Paths.LogDir, "brainrot.sock")
	ipcServer, err := ipc.NewServer(signalCtx, socketPath, d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Warn("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check configuration and queue database access"),
			logging.String(logging.FieldImpact, "daemon may not process render jobs"),
		)
	}

	<-signalCtx.Done()
	logger.Info("daemon shutting down")
	return nil
}

func registerStages(mgr *workflow.Manager, cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) {
	if mgr == nil || cfg == nil {
		return
	}

	var transformStage stage.Handler
	if cfg.Transform.Enabled {
		transformStage = transform.NewTransformer(cfg, store, logger)
	}

	mgr.ConfigureStages(workflow.StageSet{
		Transformer: transformStage,
		Narrator:    narration.NewNarrator(cfg, store, logger),
		Planner:     planner.NewPlanner(cfg, store, logger),
		Composer:    render.NewComposeStage(cfg, store, logger),
		Muxer:       render.NewMuxStage(cfg, store, logger),
		Organizer:   organizer.NewOrganizerWithNotifier(cfg, store, logger, notifier),
	})
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "brainrot.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	ffmpeg := cfg.FFmpegBinary()
	ffprobe := cfg.FFprobeBinary()
	tts := cfg.TTSBinary()
	logger.Info("dependency snapshot",
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.Bool("ffmpeg_available", binaryAvailable(ffmpeg)),
		logging.String("ffmpeg_binary", ffmpeg),
		logging.Bool("ffprobe_available", binaryAvailable(ffprobe)),
		logging.String("ffprobe_binary", ffprobe),
		logging.Bool("tts_available", binaryAvailable(tts)),
		logging.String("tts_binary", tts),
		logging.Bool("transform_enabled", cfg.Transform.Enabled),
		logging.Bool("overlays_enabled", cfg.Overlays.Enabled),
	)
}

func binaryAvailable(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}
