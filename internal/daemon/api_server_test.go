package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andigenesis/brainrot-generator/internal/api"
	"github.com/andigenesis/brainrot-generator/internal/queue"
)

type queueStoreStub struct {
	jobs []*queue.Job
}

func (s *queueStoreStub) List(context.Context, ...queue.Status) ([]*queue.Job, error) {
	return s.jobs, nil
}

func (s *queueStoreStub) GetByID(_ context.Context, id int64) (*queue.Job, error) {
	for _, job := range s.jobs {
		if job.ID == id {
			return job, nil
		}
	}
	return nil, nil
}

func (s *queueStoreStub) GetByUUID(_ context.Context, id string) (*queue.Job, error) {
	for _, job := range s.jobs {
		if job.UUID == id {
			return job, nil
		}
	}
	return nil, nil
}

func TestAPIServerHandleJobs(t *testing.T) {
	store := &queueStoreStub{jobs: []*queue.Job{
		{ID: 1, UUID: "aaa-111", Title: "Borrow Checker", Status: queue.StatusPending},
	}}
	srv := &apiServer{queueSvc: api.NewQueueService(store)}

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	w := httptest.NewRecorder()
	srv.handleJobs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.JobListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(resp.Jobs))
	}
	if resp.Jobs[0].Title != "Borrow Checker" {
		t.Fatalf("unexpected title: %q", resp.Jobs[0].Title)
	}
	if resp.Jobs[0].PublicStatus != "queued" {
		t.Fatalf("unexpected public status: %q", resp.Jobs[0].PublicStatus)
	}
}

func TestAPIServerHandleJobByUUID(t *testing.T) {
	store := &queueStoreStub{jobs: []*queue.Job{
		{ID: 7, UUID: "abc-123", Title: "Example", Status: queue.StatusComposing},
	}}
	srv := &apiServer{queueSvc: api.NewQueueService(store)}

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/ABC-123", nil)
	w := httptest.NewRecorder()
	srv.handleJob(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.JobResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Job.ID != 7 {
		t.Fatalf("job id = %d, want 7", resp.Job.ID)
	}
	if resp.Job.PublicStatus != "processing" {
		t.Fatalf("public status = %q", resp.Job.PublicStatus)
	}
}

func TestAPIServerHandleJobMissing(t *testing.T) {
	srv := &apiServer{queueSvc: api.NewQueueService(&queueStoreStub{})}

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/42", nil)
	w := httptest.NewRecorder()
	srv.handleJob(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestAuthMiddlewareRejectsBadToken(t *testing.T) {
	handler := authMiddleware("secret", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/generate", nil)
	w := httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/generate", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", w.Code)
	}
}
