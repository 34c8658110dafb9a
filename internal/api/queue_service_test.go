package api

import (
	"context"
	"testing"

	"github.com/andigenesis/brainrot-generator/internal/queue"
)

type storeStub struct {
	jobs []*queue.Job
}

func (s *storeStub) List(ctx context.Context, statuses ...queue.Status) ([]*queue.Job, error) {
	if len(statuses) == 0 {
		return s.jobs, nil
	}
	var out []*queue.Job
	for _, job := range s.jobs {
		for _, status := range statuses {
			if job.Status == status {
				out = append(out, job)
			}
		}
	}
	return out, nil
}

func (s *storeStub) GetByID(ctx context.Context, id int64) (*queue.Job, error) {
	for _, job := range s.jobs {
		if job.ID == id {
			return job, nil
		}
	}
	return nil, nil
}

func (s *storeStub) GetByUUID(ctx context.Context, id string) (*queue.Job, error) {
	for _, job := range s.jobs {
		if job.UUID == id {
			return job, nil
		}
	}
	return nil, nil
}

func TestQueueServiceListFiltersByStatus(t *testing.T) {
	svc := NewQueueService(&storeStub{jobs: []*queue.Job{
		{ID: 1, Status: queue.StatusPending},
		{ID: 2, Status: queue.StatusCompleted},
	}})

	jobs, err := svc.List(context.Background(), queue.StatusCompleted)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != 2 {
		t.Fatalf("filtered jobs = %+v", jobs)
	}
}

func TestQueueServiceDescribeMissing(t *testing.T) {
	svc := NewQueueService(&storeStub{})
	view, err := svc.Describe(context.Background(), 99)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if view != nil {
		t.Fatalf("expected nil view, got %+v", view)
	}
}

func TestQueueServiceDescribeByUUIDNormalizesCase(t *testing.T) {
	svc := NewQueueService(&storeStub{jobs: []*queue.Job{
		{ID: 3, UUID: "abc-123", Status: queue.StatusPending},
	}})

	view, err := svc.DescribeByUUID(context.Background(), "  ABC-123 ")
	if err != nil {
		t.Fatalf("describe by uuid: %v", err)
	}
	if view == nil || view.ID != 3 {
		t.Fatalf("view = %+v", view)
	}
}
