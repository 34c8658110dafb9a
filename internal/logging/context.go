package logging

import (
	"context"
	"log/slog"

	"github.com/andigenesis/brainrot-generator/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldJobID is the standardized structured logging key for queue job identifiers.
	FieldJobID = "job_id"
	// FieldStage is the standardized structured logging key for workflow stage names.
	FieldStage = "stage"
	// FieldLane is the standardized structured logging key for workflow lane names.
	FieldLane = "lane"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
	// FieldSessionID is the standardized structured logging key for daemon session identifiers.
	FieldSessionID = "session_id"
	// FieldEventType categorizes log events for filtering (stage_start, stage_complete, ...).
	FieldEventType = "event_type"
	// FieldDecisionType tags logs that record an automated choice (clip selection, voice selection).
	FieldDecisionType = "decision_type"
	// FieldErrorCode carries the stable failure classification for error logs.
	FieldErrorCode = "error_code"
	// FieldErrorHint suggests the operator's next step after a failure.
	FieldErrorHint = "error_hint"
	// FieldErrorDetailPath points at a file holding oversized error detail.
	FieldErrorDetailPath = "error_detail_path"
	// FieldProgressStage, FieldProgressPercent, FieldProgressMessage, and
	// FieldProgressETA mirror the queue progress columns in log output.
	FieldProgressStage   = "progress_stage"
	FieldProgressPercent = "progress_percent"
	FieldProgressMessage = "progress_message"
	FieldProgressETA     = "progress_eta"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.JobIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldJobID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if lane, ok := services.LaneFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldLane, lane))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
