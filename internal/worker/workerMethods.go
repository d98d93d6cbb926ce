package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/domain/jobModel"
	"github.com/akolanti/ragrouter/internal/metrics"
)

func (p *Pool) executeJob(j jobModel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(j.Status), time.Since(start))
	}()

	// the upload request is long gone; only its trace id carries over
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, j.TraceId)
	ctx, cancel := context.WithTimeout(ctx, config.IngestTimeout)
	defer cancel()
	log := p.logger.FromContext(ctx).With("jobId", j.Id)
	log.Debug("Processing job")

	j.Status = jobModel.JobStatusRunning
	p.saveJobState(ctx, j)

	j = p.ingester.IngestDocument(ctx, j)
	if j.EndTime.IsZero() {
		j.EndTime = time.Now()
	}
	p.saveJobState(ctx, j)
	log.Info("Job finished", "status", j.Status, "chunks", j.Payload.Chunks)
}

func (p *Pool) saveJobState(ctx context.Context, j jobModel.Job) {
	if err := p.jobs.JobStore.SaveJob(ctx, j); err != nil {
		p.logger.FromContext(ctx).Error("Failed to update job status", "jobId", j.Id, "err", err)
	}
}

// tryRetire removes an idle worker unless the pool is already at its minimum.
func (p *Pool) tryRetire() bool {
	for {
		n := atomic.LoadInt64(&p.currentWorkerCount)
		if n <= p.minWorkerCount {
			return false
		}
		if atomic.CompareAndSwapInt64(&p.currentWorkerCount, n, n-1) {
			p.wg.Done()
			metrics.DecrementActiveWorkerCount()
			p.logger.Debug("Idle worker timeout - removed worker", "workerCount", n-1)
			return true
		}
	}
}

func (p *Pool) removeWorker(reason string) {
	n := atomic.AddInt64(&p.currentWorkerCount, -1)
	metrics.DecrementActiveWorkerCount()
	p.logger.Info("Removed worker", "reason", reason, "workerCount", n)
	p.wg.Done()
}
