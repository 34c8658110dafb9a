package api

import (
	"context"
	"errors"
	"strings"

	"github.com/andigenesis/brainrot-generator/internal/queue"
)

// Store is the read surface the queue service needs. *queue.Store satisfies
// it; tests substitute fakes.
type Store interface {
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Job, error)
	GetByID(ctx context.Context, id int64) (*queue.Job, error)
	GetByUUID(ctx context.Context, id string) (*queue.Job, error)
}

// QueueService provides read-only job views for API consumers.
type QueueService struct {
	store Store
}

// NewQueueService wraps a queue store.
func NewQueueService(store Store) *QueueService {
	return &QueueService{store: store}
}

// List returns job views, optionally filtered by status.
func (s *QueueService) List(ctx context.Context, statuses ...queue.Status) ([]Job, error) {
	if s == nil || s.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	jobs, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromJobs(jobs), nil
}

// Describe returns a single job view by numeric id, or nil when absent.
func (s *QueueService) Describe(ctx context.Context, id int64) (*Job, error) {
	if s == nil || s.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	job, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}
	view := FromJob(job)
	return &view, nil
}

// DescribeByUUID returns a single job view by public identifier.
func (s *QueueService) DescribeByUUID(ctx context.Context, id string) (*Job, error) {
	if s == nil || s.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	trimmed := strings.ToLower(strings.TrimSpace(id))
	if trimmed == "" {
		return nil, nil
	}
	job, err := s.store.GetByUUID(ctx, trimmed)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}
	view := FromJob(job)
	return &view, nil
}
