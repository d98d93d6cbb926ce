package rag

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/domain/commonModels"
	"github.com/akolanti/ragrouter/internal/domain/jobModel"
	"github.com/akolanti/ragrouter/internal/domain/ragErrors"
	"github.com/akolanti/ragrouter/internal/metrics"
	"github.com/akolanti/ragrouter/internal/rag/chunker"
	"github.com/akolanti/ragrouter/internal/rag/llm"
	"github.com/akolanti/ragrouter/internal/rag/router"
	"github.com/akolanti/ragrouter/internal/rag/vectorDB"
	"github.com/akolanti/ragrouter/pkg/logger_i"
)

/*
Service is the opaque contract the handlers, the worker pool and the MCP tools call.
The private service struct holds the store, router and model clients; everything
is injected through NewService so tests can swap any of them for mocks.
*/
type Service interface {
	Upload(ctx context.Context, req commonModels.UploadRequest) (commonModels.UploadResult, error)
	Query(ctx context.Context, req commonModels.QueryRequest) (commonModels.QueryResponse, error)
	StreamQuery(ctx context.Context, req commonModels.QueryRequest) (<-chan commonModels.StreamEvent, error)
	Purge(ctx context.Context, ownerId string, confirm bool) (commonModels.PurgeResult, error)
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	Models() []commonModels.ModelDescriptor
}

type ModelRouter interface {
	ChooseModel(ctx context.Context, query string, o router.Overrides) string
	Models() []commonModels.ModelDescriptor
}

type Dependencies struct {
	Store  vectorDB.Store
	Cache  vectorDB.AnswerCache // optional
	Router ModelRouter
	LLM    llm.Capabilities
	// Chunker splits extracted text; nil is only valid for services that never ingest.
	Chunker *chunker.Chunker
	// StreamTimeout bounds a streamed answer; zero means config.StreamTimeout.
	StreamTimeout time.Duration
}

type service struct {
	store   vectorDB.Store
	cache   vectorDB.AnswerCache
	router  ModelRouter
	llm     llm.Capabilities
	chunker *chunker.Chunker
	logger  *logger_i.Logger

	streamTimeout time.Duration
}

func NewService(d Dependencies) Service {
	streamTimeout := d.StreamTimeout
	if streamTimeout <= 0 {
		streamTimeout = config.StreamTimeout
	}
	return &service{
		store:         d.Store,
		cache:         d.Cache,
		router:        d.Router,
		llm:           d.LLM,
		chunker:       d.Chunker,
		logger:        logger_i.NewLogger("RAG Service"),
		streamTimeout: streamTimeout,
	}
}

func validateQuery(req commonModels.QueryRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return ragErrors.InvalidInput("query must not be empty", nil)
	}
	if strings.TrimSpace(req.OwnerId) == "" {
		return ragErrors.InvalidInput("user_id is required", nil)
	}
	return nil
}

// prepared is the outcome of the synchronous steps shared by both query paths.
type prepared struct {
	owner    string
	question string
	model    string
	prompt   string
	cached   string
	hit      bool
}

func (s *service) prepare(ctx context.Context, req commonModels.QueryRequest) (prepared, error) {
	var p prepared
	if err := validateQuery(req); err != nil {
		return p, err
	}
	log := s.logger.FromContext(ctx).With("owner", req.OwnerId)

	p.owner = req.OwnerId
	p.question = s.executeSanitizeStep(req.Query)
	p.model = s.executeRoutingStep(ctx, log, p.question, req)

	// a cached answer needs no retrieval
	if s.cache != nil {
		p.cached, p.hit = s.executeCacheCheckStep(ctx, log, req.OwnerId, p.model, p.question)
		if p.hit {
			return p, nil
		}
	}

	retrieved, err := s.executeRetrievalStep(ctx, log, p.question, req.OwnerId)
	if err != nil {
		return p, err
	}
	p.prompt = BuildPrompt(BuildContext(retrieved), p.question)
	return p, nil
}

func (s *service) Query(ctx context.Context, req commonModels.QueryRequest) (commonModels.QueryResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, config.QueryTimeout)
	defer cancel()

	p, err := s.prepare(ctx, req)
	if err != nil {
		return commonModels.QueryResponse{}, err
	}
	if p.hit {
		return commonModels.QueryResponse{ModelUsed: p.model, Response: p.cached}, nil
	}

	log := s.logger.FromContext(ctx).With("model", p.model)
	answer, err := s.executeLLMStep(ctx, p.model, p.prompt)
	if err != nil {
		if ragErrors.IsConfiguration(err) {
			return commonModels.QueryResponse{}, err
		}
		log.Error("model invocation failed, returning safe response", "error", err)
		return commonModels.QueryResponse{ModelUsed: p.model, Response: config.SafeFailureResponse}, nil
	}

	s.saveToCache(ctx, req.OwnerId, p.model, p.question, answer)
	return commonModels.QueryResponse{ModelUsed: p.model, Response: answer}, nil
}

func (s *service) StreamQuery(ctx context.Context, req commonModels.QueryRequest) (<-chan commonModels.StreamEvent, error) {
	streamCtx, cancel := context.WithTimeout(ctx, s.streamTimeout)

	p, err := s.prepare(streamCtx, req)
	if err != nil {
		cancel()
		return nil, err
	}

	var src llm.TokenStream
	switch {
	case p.hit:
		src = llm.NewSliceStream(Fragment(p.cached, config.StreamFragmentSize), nil)
	case s.llm.CanStream():
		src, err = s.llm.Streamer.Stream(streamCtx, p.model, p.prompt)
		if err != nil {
			if ragErrors.IsConfiguration(err) {
				cancel()
				return nil, err
			}
			src = llm.NewSliceStream(nil, err)
		}
	}

	out := make(chan commonModels.StreamEvent)
	go func() {
		defer cancel()
		s.produce(ctx, streamCtx, out, p, src)
	}()
	return out, nil
}

/*
produce is the single writer of out. It emits tokens, then one done or one error event, then closes.
The provider runs on streamCtx, which carries the stream deadline. Events are sent on the
request ctx so a timed-out stream still delivers its error event.
*/
func (s *service) produce(ctx, streamCtx context.Context, out chan<- commonModels.StreamEvent, p prepared, src llm.TokenStream) {
	defer close(out)
	log := s.logger.FromContext(ctx).With("model", p.model)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("stream", time.Since(start)) }()

	if src == nil {
		// the client cannot stream: answer in full, then replay it in fragments
		answer, err := s.executeLLMStep(streamCtx, p.model, p.prompt)
		src = llm.NewSliceStream(Fragment(answer, config.StreamFragmentSize), err)
	}
	defer src.Close()

	var answer strings.Builder
	for src.Next() {
		token := src.Current()
		answer.WriteString(token)
		if !send(ctx, out, commonModels.StreamEvent{Type: commonModels.StreamToken, Text: token}) {
			log.Debug("stream consumer went away")
			return
		}
	}
	err := src.Err()
	if err == nil && streamCtx.Err() != nil {
		// a provider that stops on cancellation without reporting it
		err = streamCtx.Err()
	}
	if err != nil {
		log.Error("stream failed", "error", err)
		send(ctx, out, commonModels.StreamEvent{Type: commonModels.StreamError, Text: streamErrorText(err), ModelUsed: p.model})
		return
	}
	if !p.hit {
		s.saveToCache(ctx, p.owner, p.model, p.question, answer.String())
	}
	send(ctx, out, commonModels.StreamEvent{Type: commonModels.StreamDone, ModelUsed: p.model})
}

func send(ctx context.Context, out chan<- commonModels.StreamEvent, ev commonModels.StreamEvent) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- ev:
		metrics.CountStreamEvent(string(ev.Type))
		return true
	}
}

func streamErrorText(err error) string {
	if de, ok := ragErrors.As(err); ok && de.Code != ragErrors.KindModelInvocation {
		return de.Message
	}
	return config.SafeFailureResponse
}

func (s *service) Upload(ctx context.Context, req commonModels.UploadRequest) (commonModels.UploadResult, error) {
	if strings.TrimSpace(req.OwnerId) == "" {
		return commonModels.UploadResult{}, ragErrors.InvalidInput("user_id is required", nil)
	}
	if strings.TrimSpace(req.Filename) == "" {
		return commonModels.UploadResult{}, ragErrors.InvalidInput("filename is required", nil)
	}
	n, err := s.ingest(ctx, req, nil)
	if err != nil {
		return commonModels.UploadResult{}, err
	}
	s.invalidateCache(ctx, req.OwnerId)
	return commonModels.UploadResult{Filename: req.Filename, Chunks: n}, nil
}

func (s *service) Purge(ctx context.Context, ownerId string, confirm bool) (commonModels.PurgeResult, error) {
	if strings.TrimSpace(ownerId) == "" {
		return commonModels.PurgeResult{}, ragErrors.InvalidInput("user_id is required", nil)
	}
	if !confirm {
		return commonModels.PurgeResult{Purged: false, Deleted: 0}, nil
	}

	deleted, err := s.executePurgeStep(ctx, ownerId)
	if err != nil {
		return commonModels.PurgeResult{}, err
	}
	s.invalidateCache(ctx, ownerId)
	return commonModels.PurgeResult{Purged: true, Deleted: deleted}, nil
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("Document_ingestion", time.Since(start)) }()
	defer func() {
		if err := os.Remove(job.Payload.Path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("could not remove upload", "path", job.Payload.Path, "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, config.IngestTimeout)
	defer cancel()

	req := commonModels.UploadRequest{
		OwnerId:     job.Payload.OwnerId,
		Filename:    job.Payload.Filename,
		ContentType: job.Payload.ContentType,
		Path:        job.Payload.Path,
	}
	n, err := s.ingest(ctx, req, &job)
	if err != nil {
		return s.jobError(job, err, "INGESTION_FAILURE")
	}
	s.invalidateCache(ctx, req.OwnerId)
	job.Payload.Chunks = n
	job.Status = jobModel.JobStatusComplete
	job.CurrentStep = jobModel.Complete
	job.EndTime = time.Now()
	return job
}

func (s *service) Models() []commonModels.ModelDescriptor {
	return s.router.Models()
}
