package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/andigenesis/brainrot-generator/internal/api"
	"github.com/andigenesis/brainrot-generator/internal/config"
	"github.com/andigenesis/brainrot-generator/internal/logging"
	"github.com/andigenesis/brainrot-generator/internal/queue"
)

const maxGenerateBody = 1 << 20

type apiServer struct {
	bind     string
	logger   *slog.Logger
	daemon   *Daemon
	queueSvc *api.QueueService

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	svc := api.NewQueueService(d.store)
	mux := http.NewServeMux()
	srv := &apiServer{
		bind:     bind,
		logger:   logger,
		daemon:   d,
		queueSvc: svc,
	}

	token := strings.TrimSpace(cfg.Paths.APIToken)
	mux.HandleFunc("/api/generate", authMiddleware(token, srv.handleGenerate))
	mux.HandleFunc("/api/jobs", srv.handleJobs)
	mux.HandleFunc("/api/jobs/", srv.handleJob)
	mux.HandleFunc("/api/videos/", srv.handleVideo)
	mux.HandleFunc("/api/health", srv.handleHealth)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/logs", srv.handleLogs)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.GenerateRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxGenerateBody))
	if err := decoder.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.writeError(w, http.StatusBadRequest, "narration text is required")
		return
	}

	job, err := s.daemon.Generate(r.Context(), req.Title, req.Text, req.Voice)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrDuplicateNarration) {
			status = http.StatusConflict
		}
		s.writeError(w, status, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, api.GenerateResponse{Job: api.FromJob(job)})
}

func (s *apiServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var statuses []queue.Status
	for _, value := range r.URL.Query()["status"] {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		statuses = append(statuses, queue.Status(trimmed))
	}

	jobs, err := s.queueSvc.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.JobListResponse{Jobs: jobs})
}

func (s *apiServer) handleJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ref := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if ref == "" || strings.Contains(ref, "/") {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	view, err := s.describeJob(r.Context(), ref)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if view == nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.JobResponse{Job: *view})
}

// describeJob resolves a path segment as a numeric id first, then a uuid.
func (s *apiServer) describeJob(ctx context.Context, ref string) (*api.Job, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return s.queueSvc.Describe(ctx, id)
	}
	return s.queueSvc.DescribeByUUID(ctx, ref)
}

func (s *apiServer) handleVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ref := strings.TrimPrefix(r.URL.Path, "/api/videos/")
	if ref == "" || strings.Contains(ref, "/") {
		s.writeError(w, http.StatusNotFound, "video not found")
		return
	}
	view, err := s.describeJob(r.Context(), ref)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if view == nil {
		s.writeError(w, http.StatusNotFound, "video not found")
		return
	}
	if view.PublicStatus != string(queue.PublicComplete) || view.FinalFile == "" {
		s.writeError(w, http.StatusConflict, "video not ready")
		return
	}
	if _, err := os.Stat(view.FinalFile); err != nil {
		s.writeError(w, http.StatusNotFound, "video file missing")
		return
	}
	http.ServeFile(w, r, view.FinalFile)
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	summary := s.daemon.workflow.Status(r.Context())
	view := api.FromStatusSummary(summary)

	status := "ok"
	if !summary.Running {
		status = "stopped"
	}
	for _, health := range view.StageHealth {
		if !health.Ready {
			status = "degraded"
			break
		}
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:      status,
		Queue:       view.Queue,
		StageHealth: view.StageHealth,
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	deps := make([]api.DependencyStatus, len(status.Dependencies))
	for i, dep := range status.Dependencies {
		deps[i] = api.DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		}
	}
	payload := api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		QueueDBPath:  status.QueueDBPath,
		LockFilePath: status.LockFilePath,
		Workflow:     api.FromStatusSummary(status.Workflow),
		Dependencies: deps,
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	hub := s.daemon.LogStream()
	archive := s.daemon.LogArchive()
	if hub == nil && archive == nil {
		s.writeJSON(w, http.StatusOK, api.LogStreamResponse{Events: nil, Next: 0})
		return
	}

	query := r.URL.Query()
	since, _ := strconv.ParseUint(query.Get("since"), 10, 64)
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 {
		limit = 200
	}
	follow := query.Get("follow") == "1" || strings.EqualFold(query.Get("follow"), "true")
	tail := query.Get("tail") == "1" || strings.EqualFold(query.Get("tail"), "true")

	filter := logFilter{
		component:     strings.TrimSpace(query.Get("component")),
		lane:          strings.TrimSpace(query.Get("lane")),
		level:         strings.TrimSpace(query.Get("level")),
		correlationID: strings.TrimSpace(query.Get("correlation_id")),
		alert:         strings.TrimSpace(query.Get("alert")),
		search:        strings.ToLower(strings.TrimSpace(query.Get("search"))),
	}
	if value := strings.TrimSpace(query.Get("job")); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			filter.jobID = parsed
		}
	}

	var (
		raw  []logging.LogEvent
		next uint64
	)

	// The hub only retains a bounded window; requests for sequences the
	// hub has dropped fall back to the on-disk archive.
	if archive != nil && since > 0 {
		firstSeq := uint64(0)
		if hub != nil {
			firstSeq = hub.FirstSequence()
		}
		if hub == nil || (firstSeq > 0 && since < firstSeq) {
			archived, cursor, archErr := archive.ReadSince(since, limit)
			if archErr != nil {
				s.log().Warn("log archive read failed", logging.Error(archErr))
			} else if len(archived) > 0 {
				raw = archived
				next = cursor
			}
		}
	}
	if tail && since == 0 && !follow && hub != nil {
		raw, next = hub.Tail(limit)
	} else if len(raw) == 0 && hub != nil {
		fetched, cursor, err := hub.Fetch(r.Context(), since, limit, follow)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		raw = fetched
		next = cursor
	}

	filtered := make([]logging.LogEvent, 0, len(raw))
	for _, evt := range raw {
		if filter.matches(evt) {
			filtered = append(filtered, evt)
		}
	}

	s.writeJSON(w, http.StatusOK, api.LogStreamResponse{
		Events: convertLogEvents(filtered),
		Next:   next,
	})
}

type logFilter struct {
	jobID         int64
	component     string
	lane          string
	level         string
	correlationID string
	alert         string
	search        string
}

func (f logFilter) matches(evt logging.LogEvent) bool {
	if f.jobID != 0 && evt.JobID != f.jobID {
		return false
	}
	if f.component != "" && !strings.EqualFold(f.component, evt.Component) {
		return false
	}
	if f.lane != "" && !strings.EqualFold(f.lane, evt.Lane) {
		return false
	}
	if f.level != "" && !strings.EqualFold(f.level, evt.Level) {
		return false
	}
	if f.correlationID != "" && f.correlationID != evt.CorrelationID {
		return false
	}
	if f.alert != "" && !strings.EqualFold(f.alert, evt.Fields[logging.FieldAlert]) {
		return false
	}
	if f.search != "" && !strings.Contains(strings.ToLower(evt.Message), f.search) {
		return false
	}
	return true
}

func convertLogEvents(events []logging.LogEvent) []api.LogEvent {
	if len(events) == 0 {
		return nil
	}
	out := make([]api.LogEvent, 0, len(events))
	for _, evt := range events {
		details := make([]api.DetailField, 0, len(evt.Details))
		for _, detail := range evt.Details {
			details = append(details, api.DetailField{
				Label: detail.Label,
				Value: detail.Value,
			})
		}
		out = append(out, api.LogEvent{
			Sequence:  evt.Sequence,
			Timestamp: evt.Timestamp.Format(time.RFC3339Nano),
			Level:     evt.Level,
			Message:   evt.Message,
			Component: evt.Component,
			Stage:     evt.Stage,
			JobID:     evt.JobID,
			Lane:      evt.Lane,
			Fields:    evt.Fields,
			Details:   details,
		})
	}
	return out
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
