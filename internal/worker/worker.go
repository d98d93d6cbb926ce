package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/domain/jobModel"
	"github.com/akolanti/ragrouter/internal/job"
	"github.com/akolanti/ragrouter/internal/metrics"
	"github.com/akolanti/ragrouter/pkg/logger_i"
)

// Ingester is the part of rag.Service the pool needs.
type Ingester interface {
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
}

// Pool is an elastic set of workers draining the ingest queue. The dispatcher adds a
// worker per signal up to MaxWorkerCount; idle workers retire down to MinWorkerCount.
type Pool struct {
	jobs     *job.Service
	ingester Ingester
	stop     chan bool
	wg       *sync.WaitGroup

	currentWorkerCount int64
	minWorkerCount     int64
	maxWorkerCount     int64
	idleTimeout        time.Duration

	logger *logger_i.Logger
}

func NewPool(jobService *job.Service, ingester Ingester, stopWorkerChan chan bool, waitGroup *sync.WaitGroup) *Pool {
	return &Pool{
		jobs:           jobService,
		ingester:       ingester,
		stop:           stopWorkerChan,
		wg:             waitGroup,
		minWorkerCount: config.MinWorkerCount,
		maxWorkerCount: config.MaxWorkerCount,
		idleTimeout:    config.IdleWorkerTimeout,
		logger:         logger_i.NewLogger("WorkerPool"),
	}
}

func (p *Pool) Start() {
	p.logger.Info("Initializing worker pool")
	p.createWorker()
	go p.dispatcher()
}

func (p *Pool) WorkerCount() int64 {
	return atomic.LoadInt64(&p.currentWorkerCount)
}

func (p *Pool) dispatcher() {
	p.logger.Info("Dispatcher started")
	for {
		select {
		case <-p.stop:
			return
		case <-p.jobs.DispatcherChannel:
			if p.WorkerCount() < p.maxWorkerCount {
				p.createWorker()
			}
		}
	}
}

func (p *Pool) createWorker() {
	p.wg.Add(1)
	n := atomic.AddInt64(&p.currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	p.logger.Debug("Created new worker", "workerCount", n)
	go p.worker()
}

func (p *Pool) worker() {
	for {
		select {
		case currentJob := <-p.jobs.JobChannel:
			metrics.DecrementJobsInQueue()
			p.executeJob(currentJob)

		case <-p.stop:
			p.removeWorker("Stop worker signal received")
			return

		case <-time.After(p.idleTimeout):
			if p.tryRetire() {
				return
			}
		}
	}
}
