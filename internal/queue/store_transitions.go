package queue

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// rollbackCase builds the CASE expression and WHERE placeholders that map
// each processing status back to the start of its stage.
func rollbackCase() (caseClause, whereClause string, caseArgs, whereArgs []any) {
	var caseSQL strings.Builder
	caseSQL.WriteString("CASE status")
	for _, tr := range processingRollbackTransitions() {
		caseSQL.WriteString(" WHEN ? THEN ?")
		caseArgs = append(caseArgs, tr.from, tr.to)
		whereArgs = append(whereArgs, tr.from)
	}
	caseSQL.WriteString(" ELSE status END")
	return caseSQL.String(), makePlaceholders(len(whereArgs)), caseArgs, whereArgs
}

// ResetStuckProcessing resets jobs in processing states back to the start of
// their current stage. Run at daemon startup before any job is claimed.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	caseClause, whereClause, caseArgs, whereArgs := rollbackCase()
	args := make([]any, 0, len(caseArgs)+1+len(whereArgs))
	args = append(args, caseArgs...)
	args = append(args, time.Now().UTC().Format(time.RFC3339Nano))
	args = append(args, whereArgs...)

	res, err := s.execWithRetry(
		ctx,
		`UPDATE render_jobs
         SET status = `+caseClause+`,
             progress_stage = 'Reset from stuck processing',
             progress_percent = 0, progress_message = NULL, last_heartbeat = NULL, updated_at = ?
         WHERE status IN (`+whereClause+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck jobs: %w", err)
	}
	return res.RowsAffected()
}

// UpdateHeartbeat updates the last heartbeat timestamp for an in-flight job.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE render_jobs SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// ReclaimStaleProcessing returns jobs stuck in processing back to the start
// of their current stage when heartbeats expire.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	caseClause, whereClause, caseArgs, whereArgs := rollbackCase()
	args := make([]any, 0, len(caseArgs)+len(whereArgs)+2)
	args = append(args, caseArgs...)
	args = append(args, time.Now().UTC().Format(time.RFC3339Nano))
	args = append(args, whereArgs...)
	args = append(args, cutoff.UTC().Format(time.RFC3339Nano))

	res, err := s.execWithRetry(
		ctx,
		`UPDATE render_jobs
         SET status = `+caseClause+`,
             progress_stage = 'Reclaimed from stale processing',
             progress_percent = 0, progress_message = NULL, last_heartbeat = NULL, updated_at = ?
         WHERE status IN (`+whereClause+`) AND last_heartbeat IS NOT NULL AND last_heartbeat < ?`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale jobs: %w", err)
	}
	return res.RowsAffected()
}

// RetryFailed moves failed jobs back to pending for reprocessing.
func (s *Store) RetryFailed(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE render_jobs
            SET status = ?, progress_stage = 'Retry requested', progress_percent = 0,
                progress_message = NULL, error_message = NULL, updated_at = ?
            WHERE status = ?`,
			StatusPending,
			time.Now().UTC().Format(time.RFC3339Nano),
			StatusFailed,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed jobs: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+2)
	args = append(args, StatusPending, time.Now().UTC().Format(time.RFC3339Nano))
	for _, id := range ids {
		args = append(args, id)
	}
	query := `UPDATE render_jobs
        SET status = ?, progress_stage = 'Retry requested', progress_percent = 0,
            progress_message = NULL, error_message = NULL, updated_at = ?
        WHERE id IN (` + placeholders + `) AND status = '` + string(StatusFailed) + `'`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected jobs: %w", err)
	}
	return res.RowsAffected()
}
