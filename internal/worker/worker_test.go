package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/ragrouter/internal/domain/jobModel"
	"github.com/akolanti/ragrouter/internal/job"
)

// MockIngester tracks which jobs were executed
type MockIngester struct {
	ProcessedCount int32
	OnIngest       func(j jobModel.Job) jobModel.Job
}

func (m *MockIngester) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnIngest != nil {
		return m.OnIngest(j)
	}
	j.Status = jobModel.JobStatusComplete
	return j
}

type MockJobStore struct {
	mu    sync.Mutex
	saved []jobModel.Job
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	return jobModel.Job{}, false
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, j)
	return nil
}

func (m *MockJobStore) statuses() []jobModel.JobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []jobModel.JobStatus
	for _, j := range m.saved {
		out = append(out, j.Status)
	}
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func newJobService(store jobModel.JobStore) *job.Service {
	return job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          store,
	})
}

func TestWorkerPool_Flow(t *testing.T) {
	store := &MockJobStore{}
	jobSvc := newJobService(store)
	ingester := &MockIngester{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	pool := NewPool(jobSvc, ingester, stopChan, wg)
	pool.Start()

	t.Run("Starts with one worker", func(t *testing.T) {
		if n := pool.WorkerCount(); n != 1 {
			t.Errorf("Expected 1 worker, got %d", n)
		}
	})

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true
		waitFor(t, func() bool { return pool.WorkerCount() == 2 })
	})

	t.Run("Worker processes a job and records running then final state", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "test-1", Status: jobModel.JobStatusQueued}

		waitFor(t, func() bool { return atomic.LoadInt32(&ingester.ProcessedCount) == 1 })
		waitFor(t, func() bool { return len(store.statuses()) == 2 })

		got := store.statuses()
		if got[0] != jobModel.JobStatusRunning || got[1] != jobModel.JobStatusComplete {
			t.Errorf("unexpected status sequence %v", got)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
		if n := pool.WorkerCount(); n != 0 {
			t.Errorf("Expected 0 workers after stop, got %d", n)
		}
	})
}

func TestWorker_FailedJobKeepsErrorState(t *testing.T) {
	store := &MockJobStore{}
	jobSvc := newJobService(store)
	ingester := &MockIngester{OnIngest: func(j jobModel.Job) jobModel.Job {
		j.Status = jobModel.JobStatusError
		j.Error = jobModel.JobError{Code: 503, Message: "vector store unavailable", Retry: true}
		return j
	}}
	stopChan := make(chan bool)
	pool := NewPool(jobSvc, ingester, stopChan, &sync.WaitGroup{})
	pool.Start()
	defer close(stopChan)

	jobSvc.JobChannel <- jobModel.Job{Id: "bad"}
	waitFor(t, func() bool { return len(store.statuses()) == 2 })

	store.mu.Lock()
	final := store.saved[1]
	store.mu.Unlock()
	if final.Status != jobModel.JobStatusError || final.Error.Code != 503 {
		t.Errorf("expected error state to be saved, got %+v", final)
	}
	if final.EndTime.IsZero() {
		t.Error("expected EndTime to be set")
	}
}

func TestWorker_IdleTimeout(t *testing.T) {
	jobSvc := newJobService(&MockJobStore{})
	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	defer close(stopChan)

	pool := NewPool(jobSvc, &MockIngester{}, stopChan, wg)
	pool.idleTimeout = 20 * time.Millisecond
	pool.minWorkerCount = 1

	pool.createWorker()
	pool.createWorker()
	pool.createWorker()

	// extra workers retire, the minimum stays
	waitFor(t, func() bool { return pool.WorkerCount() == 1 })
	time.Sleep(100 * time.Millisecond)
	if n := pool.WorkerCount(); n != 1 {
		t.Errorf("Worker count should settle at the minimum, got %d", n)
	}
}
