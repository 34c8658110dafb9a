package queueaccess

import (
	"context"
	"strings"

	"github.com/andigenesis/brainrot-generator/internal/api"
	"github.com/andigenesis/brainrot-generator/internal/ipc"
	"github.com/andigenesis/brainrot-generator/internal/queue"
)

// Access provides queue operations regardless of IPC or direct store backing.
type Access interface {
	Health(ctx context.Context) (api.QueueHealth, error)
	List(ctx context.Context, statuses []string) ([]api.Job, error)
	Describe(ctx context.Context, id int64) (*api.Job, error)
	DescribeByUUID(ctx context.Context, id string) (*api.Job, error)
	ClearAll(ctx context.Context) (int64, error)
	ClearCompleted(ctx context.Context) (int64, error)
	ClearFailed(ctx context.Context) (int64, error)
	Remove(ctx context.Context, ids []int64) (int64, error)
	ResetStuck(ctx context.Context) (int64, error)
	RetryAll(ctx context.Context) (int64, error)
	Retry(ctx context.Context, ids []int64) (int64, error)
	Cancel(ctx context.Context, ids []int64) (int64, error)
}

// NewIPCAccess returns an Access backed by daemon IPC.
func NewIPCAccess(client *ipc.Client) Access {
	return &ipcAccess{client: client}
}

// NewStoreAccess returns an Access backed by direct DB access.
func NewStoreAccess(store *queue.Store) Access {
	return &storeAccess{store: store, service: api.NewQueueService(store)}
}

type ipcAccess struct {
	client *ipc.Client
}

func (a *ipcAccess) Health(_ context.Context) (api.QueueHealth, error) {
	resp, err := a.client.QueueHealth()
	if err != nil {
		return api.QueueHealth{}, err
	}
	return api.QueueHealth{
		Total:      resp.Total,
		Pending:    resp.Pending,
		Processing: resp.Processing,
		Failed:     resp.Failed,
		Completed:  resp.Completed,
	}, nil
}

func (a *ipcAccess) List(_ context.Context, statuses []string) ([]api.Job, error) {
	resp, err := a.client.QueueList(statuses)
	if err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

func (a *ipcAccess) Describe(_ context.Context, id int64) (*api.Job, error) {
	resp, err := a.client.QueueDescribe(id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	job := resp.Job
	return &job, nil
}

func (a *ipcAccess) DescribeByUUID(_ context.Context, id string) (*api.Job, error) {
	resp, err := a.client.QueueDescribeUUID(id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	job := resp.Job
	return &job, nil
}

// The RPC layer flattens service errors into strings, so the not-found
// case is matched by message.
func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not found")
}

func (a *ipcAccess) ClearAll(_ context.Context) (int64, error) {
	resp, err := a.client.QueueClear()
	if err != nil {
		return 0, err
	}
	return resp.Removed, nil
}

func (a *ipcAccess) ClearCompleted(_ context.Context) (int64, error) {
	resp, err := a.client.QueueClearCompleted()
	if err != nil {
		return 0, err
	}
	return resp.Removed, nil
}

func (a *ipcAccess) ClearFailed(_ context.Context) (int64, error) {
	resp, err := a.client.QueueClearFailed()
	if err != nil {
		return 0, err
	}
	return resp.Removed, nil
}

func (a *ipcAccess) Remove(_ context.Context, ids []int64) (int64, error) {
	resp, err := a.client.QueueRemove(ids)
	if err != nil {
		return 0, err
	}
	return resp.Removed, nil
}

func (a *ipcAccess) ResetStuck(_ context.Context) (int64, error) {
	resp, err := a.client.QueueReset()
	if err != nil {
		return 0, err
	}
	return resp.Updated, nil
}

func (a *ipcAccess) RetryAll(_ context.Context) (int64, error) {
	resp, err := a.client.QueueRetry(nil)
	if err != nil {
		return 0, err
	}
	return resp.Updated, nil
}

func (a *ipcAccess) Retry(_ context.Context, ids []int64) (int64, error) {
	resp, err := a.client.QueueRetry(ids)
	if err != nil {
		return 0, err
	}
	return resp.Updated, nil
}

func (a *ipcAccess) Cancel(_ context.Context, ids []int64) (int64, error) {
	resp, err := a.client.QueueCancel(ids)
	if err != nil {
		return 0, err
	}
	return resp.Updated, nil
}

type storeAccess struct {
	store   *queue.Store
	service *api.QueueService
}

func (a *storeAccess) Health(ctx context.Context) (api.QueueHealth, error) {
	health, err := a.store.Health(ctx)
	if err != nil {
		return api.QueueHealth{}, err
	}
	return api.FromHealthSummary(health), nil
}

func (a *storeAccess) List(ctx context.Context, statuses []string) ([]api.Job, error) {
	var filters []queue.Status
	for _, s := range statuses {
		if parsed, ok := queue.ParseStatus(s); ok {
			filters = append(filters, parsed)
		}
	}
	return a.service.List(ctx, filters...)
}

func (a *storeAccess) Describe(ctx context.Context, id int64) (*api.Job, error) {
	return a.service.Describe(ctx, id)
}

func (a *storeAccess) DescribeByUUID(ctx context.Context, id string) (*api.Job, error) {
	return a.service.DescribeByUUID(ctx, id)
}

func (a *storeAccess) ClearAll(ctx context.Context) (int64, error) {
	return a.store.Clear(ctx)
}

func (a *storeAccess) ClearCompleted(ctx context.Context) (int64, error) {
	return a.store.ClearCompleted(ctx)
}

func (a *storeAccess) ClearFailed(ctx context.Context) (int64, error) {
	return a.store.ClearFailed(ctx)
}

func (a *storeAccess) Remove(ctx context.Context, ids []int64) (int64, error) {
	var count int64
	for _, id := range ids {
		removed, err := a.store.Remove(ctx, id)
		if err != nil {
			return count, err
		}
		if removed {
			count++
		}
	}
	return count, nil
}

func (a *storeAccess) ResetStuck(ctx context.Context) (int64, error) {
	return a.store.ResetStuckProcessing(ctx)
}

func (a *storeAccess) RetryAll(ctx context.Context) (int64, error) {
	return a.store.RetryFailed(ctx)
}

func (a *storeAccess) Retry(ctx context.Context, ids []int64) (int64, error) {
	return a.store.RetryFailed(ctx, ids...)
}

func (a *storeAccess) Cancel(ctx context.Context, ids []int64) (int64, error) {
	var count int64
	for _, id := range ids {
		job, err := a.store.GetByID(ctx, id)
		if err != nil {
			return count, err
		}
		if job == nil || job.IsTerminal() {
			continue
		}
		if job.IsProcessing() {
			job.Status = queue.StatusCancelled
		} else {
			job.SetCancelled()
		}
		if err := a.store.Update(ctx, job); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
