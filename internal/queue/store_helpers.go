package queue

import (
	"database/sql"
	"errors"
	"time"
)

const jobColumns = "id, uuid, title, narration_text, status, voice, language, narration_file, narration_ms, timing_json, approximate_timing, transform_applied, background_clip, overlays_json, composed_file, final_file, job_log_path, error_message, created_at, updated_at, progress_stage, progress_percent, progress_message, metadata_json, last_heartbeat, needs_review, review_reason"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id               int64
		uuidStr          string
		title            sql.NullString
		narrationText    string
		statusStr        string
		voice            sql.NullString
		language         sql.NullString
		narrationFile    sql.NullString
		narrationMS      sql.NullInt64
		timingJSON       sql.NullString
		approximate      sql.NullInt64
		transformApplied sql.NullInt64
		backgroundClip   sql.NullString
		overlaysJSON     sql.NullString
		composedFile     sql.NullString
		finalFile        sql.NullString
		jobLogPath       sql.NullString
		errorMessage     sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
		progressStage    sql.NullString
		progressPercent  sql.NullFloat64
		progressMessage  sql.NullString
		metadata         sql.NullString
		lastHeartbeatRaw sql.NullString
		needsReview      sql.NullInt64
		reviewReason     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&uuidStr,
		&title,
		&narrationText,
		&statusStr,
		&voice,
		&language,
		&narrationFile,
		&narrationMS,
		&timingJSON,
		&approximate,
		&transformApplied,
		&backgroundClip,
		&overlaysJSON,
		&composedFile,
		&finalFile,
		&jobLogPath,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&metadata,
		&lastHeartbeatRaw,
		&needsReview,
		&reviewReason,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:              id,
		UUID:            uuidStr,
		Title:           title.String,
		NarrationText:   narrationText,
		Status:          Status(statusStr),
		Voice:           voice.String,
		Language:        language.String,
		NarrationFile:   narrationFile.String,
		NarrationMS:     narrationMS.Int64,
		TimingJSON:      timingJSON.String,
		BackgroundClip:  backgroundClip.String,
		OverlaysJSON:    overlaysJSON.String,
		ComposedFile:    composedFile.String,
		FinalFile:       finalFile.String,
		JobLogPath:      jobLogPath.String,
		ErrorMessage:    errorMessage.String,
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
		MetadataJSON:    metadata.String,
	}
	if approximate.Valid {
		job.ApproximateTiming = approximate.Int64 != 0
	}
	if transformApplied.Valid {
		job.TransformApplied = transformApplied.Int64 != 0
	}
	if needsReview.Valid {
		job.NeedsReview = needsReview.Int64 != 0
	}
	job.ReviewReason = reviewReason.String

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	if lastHeartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(lastHeartbeatRaw.String); err == nil {
			job.LastHeartbeat = &heartbeat
		}
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	v := value.UTC().Format(time.RFC3339Nano)
	return v
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
