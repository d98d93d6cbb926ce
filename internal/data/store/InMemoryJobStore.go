package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/domain/jobModel"
	"github.com/akolanti/ragrouter/pkg/logger_i"
)

type storedJob struct {
	job     jobModel.Job
	expires time.Time
}

// InMemoryJobStore is the fallback when Redis is offline. Entries expire like the Redis keys do.
type InMemoryJobStore struct {
	jobMutex sync.RWMutex
	jobMap   map[string]storedJob
	ttl      time.Duration
	logger   *logger_i.Logger
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return NewInMemoryJobStore(config.RedisJobStoreTTL)
}

func NewInMemoryJobStore(ttl time.Duration) *InMemoryJobStore {
	return &InMemoryJobStore{
		jobMap: make(map[string]storedJob),
		ttl:    ttl,
		logger: logger_i.NewLogger("InMem JobStore"),
	}
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, jobToStore jobModel.Job) error {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	store.jobMap[jobToStore.Id] = storedJob{job: jobToStore, expires: time.Now().Add(store.ttl)}
	store.logger.FromContext(ctx).Debug("Saved job to store", "jobId", jobToStore.Id, "status", jobToStore.Status)
	return nil
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	store.jobMutex.RLock()
	result, found := store.jobMap[jobId]
	store.jobMutex.RUnlock()

	if found && time.Now().After(result.expires) {
		store.DeleteJob(ctx, jobId)
		return jobModel.Job{}, false
	}
	return result.job, found
}

func (store *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	delete(store.jobMap, jobID)
}
