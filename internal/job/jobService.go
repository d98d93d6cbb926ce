package job

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/domain/jobModel"
	"github.com/akolanti/ragrouter/internal/metrics"
	"github.com/akolanti/ragrouter/pkg/logger_i"
)

// Service owns the ingest queue shared by the HTTP handlers and the worker pool.
type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	logger            *logger_i.Logger
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		logger:            logger_i.NewLogger("JobService"),
	}
}

// Enqueue records a new ingest job as QUEUED and hands it to the worker pool.
func (s *Service) Enqueue(ctx context.Context, id string, payload jobModel.IngestPayload) jobModel.Job {
	log := s.logger.FromContext(ctx).With("jobId", id)

	trace, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	j := jobModel.Job{
		Id:          id,
		TraceId:     trace,
		Payload:     payload,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
		CurrentStep: jobModel.IngestInit,
	}
	if err := s.JobStore.SaveJob(ctx, j); err != nil {
		log.Error("Failed to save queued job", "err", err)
	}

	metrics.IncrementJobsInQueue()
	//blocking send, a full queue holds the request
	s.JobChannel <- j
	log.Info("Queued ingest job", "filename", payload.Filename)

	//every ingest asks the dispatcher for another worker; idle workers retire on their own
	count := atomic.AddInt64(&s.RequestCount, 1)
	metrics.StartDispatcherSignalCount()
	select {
	case s.DispatcherChannel <- true:
	default:
		log.Debug("Dispatcher busy, skipping signal", "count", count)
	}
	return j
}

func (s *Service) Status(ctx context.Context, id string) (jobModel.Job, bool) {
	if id == "" {
		return jobModel.Job{}, false
	}
	return s.JobStore.GetJob(ctx, id)
}
