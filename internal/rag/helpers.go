package rag

import (
	"context"
	"time"

	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/domain/commonModels"
	"github.com/akolanti/ragrouter/internal/domain/jobModel"
	"github.com/akolanti/ragrouter/internal/domain/ragErrors"
	"github.com/akolanti/ragrouter/internal/metrics"
	"github.com/akolanti/ragrouter/internal/rag/ingest"
	"github.com/akolanti/ragrouter/internal/rag/router"
	"github.com/akolanti/ragrouter/pkg/logger_i"
)

const cacheSaveTimeout = 10 * time.Second

func logStep(job *jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) {
	if job == nil {
		return
	}
	job.CurrentStep = status
	log.Debug("IngestDocument", "Current Status", job.CurrentStep)
}

func (s *service) jobError(job jobModel.Job, err error, message string) jobModel.Job {
	s.logger.Error(message, "error", err, "JobId", job.Id)

	msg := "Internal Server Error"
	if de, ok := ragErrors.As(err); ok {
		msg = de.Message
	}
	job.Error = jobModel.JobError{
		Code:    ragErrors.HTTPStatus(err),
		Message: msg,
		Retry:   !ragErrors.IsPermanent(err),
	}
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	job.EndTime = time.Now()
	return job
}

func (s *service) executeSanitizeStep(query string) string {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("sanitize", time.Since(start)) }()

	return Sanitize(query)
}

func (s *service) executeRetrievalStep(ctx context.Context, log *logger_i.Logger, question, ownerId string) (commonModels.RetrievalResult, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("retrieval", time.Since(start)) }()

	res, err := s.store.Query(ctx, question, ownerId, config.RetrievalTopK)
	if err != nil {
		log.Error("retrieval failed", "error", err)
		return res, err
	}
	log.Debug("retrieved chunks", "count", res.Len())
	return res, nil
}

func (s *service) executeRoutingStep(ctx context.Context, log *logger_i.Logger, question string, req commonModels.QueryRequest) string {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("routing", time.Since(start)) }()

	model := s.router.ChooseModel(ctx, question, router.Overrides{
		Model:     req.Model,
		AgentMode: req.AgentMode,
		Tier:      req.Tier,
	})
	log.Debug("model selected", "model", model)
	return model
}

func (s *service) executeCacheCheckStep(ctx context.Context, log *logger_i.Logger, ownerId, model, question string) (string, bool) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	answer, found := s.cache.Lookup(ctx, ownerId, model, question)
	if found {
		log.Info("semantic cache hit")
	}
	return answer, found
}

func (s *service) executeLLMStep(ctx context.Context, model, prompt string) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm", time.Since(start)) }()

	return s.llm.Client.Invoke(ctx, model, prompt)
}

func (s *service) executePurgeStep(ctx context.Context, ownerId string) (int, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("purge", time.Since(start)) }()

	return s.store.DeleteOwner(ctx, ownerId)
}

// saveToCache runs in the background and outlives the request.
func (s *service) saveToCache(ctx context.Context, ownerId, model, question, answer string) {
	if s.cache == nil || answer == "" {
		return
	}
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheSaveTimeout)
	go func() {
		defer cancel()
		if err := s.cache.Save(bg, ownerId, model, question, answer); err != nil {
			s.logger.FromContext(bg).Warn("Failed to save to cache", "error", err)
		}
	}()
}

// invalidateCache drops the owner's cached answers once their documents change.
func (s *service) invalidateCache(ctx context.Context, ownerId string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, ownerId); err != nil {
		s.logger.FromContext(ctx).Warn("semantic cache invalidation failed", "owner", ownerId, "error", err)
	}
}

// ingest is the shared upload pipeline. job is nil for synchronous uploads.
func (s *service) ingest(ctx context.Context, req commonModels.UploadRequest, job *jobModel.Job) (int, error) {
	log := s.logger.FromContext(ctx).With("owner", req.OwnerId, "filename", req.Filename)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("ingest", time.Since(start)) }()

	logStep(job, jobModel.IngestExtracting, log)
	contentType := ingest.DetectContentType(req.Path, req.ContentType)
	text, err := ingest.ExtractText(req.Path, contentType)
	if err != nil {
		return 0, err
	}

	logStep(job, jobModel.IngestChunking, log)
	if s.chunker == nil {
		return 0, ragErrors.Configuration("no chunker configured", "check the tokenizer setup", nil)
	}
	texts := s.chunker.Split(text)
	doc := commonModels.Document{
		OwnerId:     req.OwnerId,
		Filename:    req.Filename,
		ContentType: contentType,
		UploadedAt:  time.Now(),
	}
	chunks := ingest.PrepareChunks(doc, texts)

	logStep(job, jobModel.IngestStoring, log)
	if err := ingest.BatchIngest(ctx, chunks, s.store); err != nil {
		return 0, err
	}
	log.Info("document ingested", "chunks", len(chunks), "contentType", contentType)
	return len(chunks), nil
}
