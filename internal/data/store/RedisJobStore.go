package store

import (
	"context"

	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/data/redisStore"
	"github.com/akolanti/ragrouter/internal/domain/jobModel"
	"github.com/akolanti/ragrouter/pkg/logger_i"
)

const jobKeyPrefix = "ingest:job:"

// RedisJobStore keeps ingest job state as JSON with a TTL so finished jobs expire.
type RedisJobStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisJobStore(ctx context.Context, cfg *config.Config) (*RedisJobStore, error) {
	s, err := redisStore.GetRedisStore(ctx, redisStore.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       config.RedisJobStore,
	})
	if err != nil {
		return nil, err
	}
	return NewRedisJobStore(s), nil
}

func NewRedisJobStore(s *redisStore.Store) *RedisJobStore {
	return &RedisJobStore{
		store:  s,
		logger: logger_i.NewLogger("JobStore"),
	}
}

func (s *RedisJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	if err := s.store.SetJSON(ctx, jobKeyPrefix+job.Id, job, config.RedisJobStoreTTL); err != nil {
		return err
	}
	s.logger.FromContext(ctx).Debug("Saved job to Redis", "jobId", job.Id, "status", job.Status)
	return nil
}

func (s *RedisJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	var job jobModel.Job
	found, err := s.store.GetJSON(ctx, jobKeyPrefix+jobId, &job)
	if err != nil {
		s.logger.FromContext(ctx).Error("Error reading job from Redis", "jobId", jobId, "err", err)
		return jobModel.Job{}, false
	}
	return job, found
}

func (s *RedisJobStore) DeleteJob(ctx context.Context, jobID string) {
	if err := s.store.Del(ctx, jobKeyPrefix+jobID); err != nil {
		s.logger.Error("Error deleting job from Redis", "jobId", jobID, "err", err)
		return
	}
	s.logger.Debug("Job deleted from Redis", "jobId", jobID)
}
