package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andigenesis/brainrot-generator/internal/config"
	"github.com/andigenesis/brainrot-generator/internal/logging"
	"github.com/andigenesis/brainrot-generator/internal/queue"
)

// JobLogger manages dedicated log files for per-job stage output. Stage
// records go only to the job file, mirrored to the daemon stream hub so the
// log tail API can follow an individual job.
type JobLogger struct {
	baseDir string
	hub     *logging.StreamHub
	cfg     *config.Config
}

// NewJobLogger creates a job logger rooted under <log_dir>/jobs.
func NewJobLogger(cfg *config.Config, hub *logging.StreamHub) *JobLogger {
	dir := ""
	if cfg != nil && cfg.Paths.LogDir != "" {
		dir = filepath.Join(cfg.Paths.LogDir, "jobs")
	}
	return &JobLogger{baseDir: dir, hub: hub, cfg: cfg}
}

// Ensure prepares the log directory and records the file path on the job.
func (j *JobLogger) Ensure(job *queue.Job) (string, bool, error) {
	if job == nil {
		return "", false, fmt.Errorf("queue job is nil")
	}
	if strings.TrimSpace(j.baseDir) == "" {
		return "", false, fmt.Errorf("job log directory not configured")
	}
	created := false
	if strings.TrimSpace(job.JobLogPath) == "" {
		job.JobLogPath = filepath.Join(j.baseDir, j.filename(job))
		created = true
	}
	if err := os.MkdirAll(filepath.Dir(job.JobLogPath), 0o755); err != nil {
		return "", false, fmt.Errorf("ensure job log directory: %w", err)
	}
	return job.JobLogPath, created, nil
}

// CreateHandler builds a slog.Handler writing to the specified path.
func (j *JobLogger) CreateHandler(path string) (slog.Handler, error) {
	level := "info"
	format := "json"
	if j.cfg != nil {
		if strings.TrimSpace(j.cfg.Logging.Level) != "" {
			level = j.cfg.Logging.Level
		}
		if strings.TrimSpace(j.cfg.Logging.Format) != "" {
			format = j.cfg.Logging.Format
		}
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           format,
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{path},
		Stream:           j.hub,
	})
	if err != nil {
		return nil, err
	}
	return logger.Handler(), nil
}

func (j *JobLogger) filename(job *queue.Job) string {
	timestamp := time.Now().UTC().Format("20060102T150405")
	id := strings.ToLower(strings.TrimSpace(job.UUID))
	if id == "" {
		id = fmt.Sprintf("job-%d", job.ID)
	}
	return fmt.Sprintf("%s-%s.log", timestamp, id)
}

// stageLogger returns a logger that writes stage records to the job's own
// log file, tagged with the job identifier. Falls back to the run logger
// when the job log cannot be created.
func (m *Manager) stageLogger(ctx context.Context, runLogger *slog.Logger, job *queue.Job) *slog.Logger {
	base := runLogger
	if base == nil {
		base = m.logger
	}
	if base == nil {
		base = logging.NewNop()
	}

	if job != nil {
		path, _, err := m.jobLogs.Ensure(job)
		if err != nil {
			base.Warn("job log unavailable", logging.Error(err))
		} else if handler, handlerErr := m.jobLogs.CreateHandler(path); handlerErr != nil {
			base.Warn("failed to create job log writer", logging.Error(handlerErr))
		} else {
			base = slog.New(handler).With(logging.Int64(logging.FieldJobID, job.ID))
		}
	}

	return logging.WithContext(ctx, base)
}
