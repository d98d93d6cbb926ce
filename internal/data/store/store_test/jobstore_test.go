package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/data/redisStore"
	"github.com/akolanti/ragrouter/internal/data/store"
	"github.com/akolanti/ragrouter/internal/domain/jobModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testJob(id string) jobModel.Job {
	return jobModel.Job{
		Id:          id,
		Status:      jobModel.JobStatusRunning,
		CurrentStep: jobModel.IngestChunking,
		Payload: jobModel.IngestPayload{
			OwnerId:  "user-1",
			Filename: "contract.pdf",
			Path:     "/tmp/123-contract.pdf",
		},
	}
}

func TestRedisJobStore_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	jobStore := store.NewRedisJobStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	jobID := "job_abc_123"
	key := "ingest:job:" + jobID

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		if err := jobStore.SaveJob(ctx, testJob(jobID)); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		retrievedJob, found := jobStore.GetJob(ctx, jobID)
		if !found {
			t.Fatal("Job was saved but not found in Redis")
		}
		if retrievedJob.Payload.Filename != "contract.pdf" || retrievedJob.Payload.OwnerId != "user-1" {
			t.Errorf("Data mismatch! Got %+v", retrievedJob.Payload)
		}
		if retrievedJob.CurrentStep != jobModel.IngestChunking {
			t.Errorf("CurrentStep = %s", retrievedJob.CurrentStep)
		}
	})

	t.Run("Saved job expires", func(t *testing.T) {
		if ttl := mr.TTL(key); ttl != config.RedisJobStoreTTL {
			t.Errorf("TTL = %v, want %v", ttl, config.RedisJobStoreTTL)
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		if _, found := jobStore.GetJob(ctx, "ghost-id"); found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Corrupt value is not found", func(t *testing.T) {
		if err := mr.Set("ingest:job:corrupt", "{not json"); err != nil {
			t.Fatal(err)
		}
		if _, found := jobStore.GetJob(ctx, "corrupt"); found {
			t.Error("Expected found=false for corrupt value")
		}
	})

	t.Run("Delete Job", func(t *testing.T) {
		jobStore.DeleteJob(ctx, jobID)
		if mr.Exists(key) {
			t.Error("Job still exists in Redis after DeleteJob call")
		}
	})
}

func TestRedisJobStore_Offline(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	jobStore := store.NewRedisJobStore(redisStore.NewTestStore(client))
	mr.Close()

	if err := jobStore.SaveJob(context.Background(), testJob("x")); err == nil {
		t.Error("expected an error with redis offline")
	}
	if _, found := jobStore.GetJob(context.Background(), "x"); found {
		t.Error("expected found=false with redis offline")
	}
}

func TestRedisJobStore_Race(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	jobStore := store.NewRedisJobStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "race-trace")
	job := testJob("race-job")

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = jobStore.SaveJob(ctx, job)
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
	wg.Wait()

	if _, found := jobStore.GetJob(ctx, "race-job"); !found {
		t.Error("expected job after concurrent saves")
	}
}

func TestInMemoryJobStore(t *testing.T) {
	s := store.InitInMemoryJobStore()
	ctx := context.Background()

	if err := s.SaveJob(ctx, testJob("a")); err != nil {
		t.Fatal(err)
	}
	got, found := s.GetJob(ctx, "a")
	if !found || got.Payload.Filename != "contract.pdf" {
		t.Fatalf("expected saved job, got %+v found=%v", got, found)
	}

	s.DeleteJob(ctx, "a")
	if _, found := s.GetJob(ctx, "a"); found {
		t.Error("expected job to be deleted")
	}
}

func TestInMemoryJobStore_Expiry(t *testing.T) {
	s := store.NewInMemoryJobStore(10 * time.Millisecond)

	_ = s.SaveJob(context.Background(), testJob("old"))
	time.Sleep(30 * time.Millisecond)

	if _, found := s.GetJob(context.Background(), "old"); found {
		t.Error("expected expired job to be gone")
	}
}
