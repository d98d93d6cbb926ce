package rag_test

import (
	"context"
	"strings"
	"sync"

	"github.com/akolanti/ragrouter/internal/domain/commonModels"
	"github.com/akolanti/ragrouter/internal/rag/llm"
	"github.com/akolanti/ragrouter/internal/rag/router"
)

// MockStore implements vectorDB.Store
type MockStore struct {
	mu            sync.Mutex
	OnAdd         func(ctx context.Context, chunks []commonModels.DocChunk) error
	OnQuery       func(ctx context.Context, text, ownerId string, k int) (commonModels.RetrievalResult, error)
	OnDeleteOwner func(ctx context.Context, ownerId string) (int, error)
	Added         []commonModels.DocChunk
	DeleteCalls   int
}

func (m *MockStore) Add(ctx context.Context, chunks []commonModels.DocChunk) error {
	m.mu.Lock()
	m.Added = append(m.Added, chunks...)
	m.mu.Unlock()
	if m.OnAdd != nil {
		return m.OnAdd(ctx, chunks)
	}
	return nil
}

func (m *MockStore) Query(ctx context.Context, text, ownerId string, k int) (commonModels.RetrievalResult, error) {
	if m.OnQuery != nil {
		return m.OnQuery(ctx, text, ownerId, k)
	}
	var r commonModels.RetrievalResult
	r.Append("default passage", commonModels.ChunkMetadata{OwnerId: ownerId, Filename: "default.txt"})
	return r, nil
}

func (m *MockStore) DeleteOwner(ctx context.Context, ownerId string) (int, error) {
	m.mu.Lock()
	m.DeleteCalls++
	m.mu.Unlock()
	if m.OnDeleteOwner != nil {
		return m.OnDeleteOwner(ctx, ownerId)
	}
	return 0, nil
}

// MockCache implements vectorDB.AnswerCache
type MockCache struct {
	mu          sync.Mutex
	OnLookup    func(ctx context.Context, ownerId, modelId, question string) (string, bool)
	Saved       chan string
	Invalidated []string
}

func (m *MockCache) Lookup(ctx context.Context, ownerId, modelId, question string) (string, bool) {
	if m.OnLookup != nil {
		return m.OnLookup(ctx, ownerId, modelId, question)
	}
	return "", false
}

func (m *MockCache) Save(ctx context.Context, ownerId, modelId, question, answer string) error {
	if m.Saved != nil {
		m.Saved <- answer
	}
	return nil
}

func (m *MockCache) Invalidate(ctx context.Context, ownerId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invalidated = append(m.Invalidated, ownerId)
	return nil
}

// MockRouter implements rag.ModelRouter
type MockRouter struct {
	OnChooseModel func(ctx context.Context, query string, o router.Overrides) string
	LastQuery     string
}

func (m *MockRouter) ChooseModel(ctx context.Context, query string, o router.Overrides) string {
	m.LastQuery = query
	if m.OnChooseModel != nil {
		return m.OnChooseModel(ctx, query, o)
	}
	return router.DefaultModel
}

func (m *MockRouter) Models() []commonModels.ModelDescriptor {
	return router.Catalog()
}

// MockLLM implements llm.SyncClient
type MockLLM struct {
	OnInvoke   func(ctx context.Context, modelId, prompt string) (string, error)
	LastPrompt string
}

func (m *MockLLM) Invoke(ctx context.Context, modelId, prompt string) (string, error) {
	m.LastPrompt = prompt
	if m.OnInvoke != nil {
		return m.OnInvoke(ctx, modelId, prompt)
	}
	return "mocked llm response", nil
}

// MockStreamingLLM implements llm.StreamingClient
type MockStreamingLLM struct {
	MockLLM
	OnStream func(ctx context.Context, modelId, prompt string) (llm.TokenStream, error)
}

func (m *MockStreamingLLM) Stream(ctx context.Context, modelId, prompt string) (llm.TokenStream, error) {
	m.LastPrompt = prompt
	if m.OnStream != nil {
		return m.OnStream(ctx, modelId, prompt)
	}
	return llm.NewSliceStream([]string{"mocked ", "stream"}, nil), nil
}

// trackedStream records Close so tests can check upstream shutdown.
type trackedStream struct {
	llm.TokenStream
	closed chan struct{}
}

func (t *trackedStream) Close() error {
	close(t.closed)
	return t.TokenStream.Close()
}

// endlessStream yields tokens until closed.
type endlessStream struct{}

func (endlessStream) Next() bool      { return true }
func (endlessStream) Current() string { return "tok" }
func (endlessStream) Err() error      { return nil }
func (endlessStream) Close() error    { return nil }

// MemoryCache is an exact-match AnswerCache keyed by owner, model and question.
type MemoryCache struct {
	mu      sync.Mutex
	answers map[string]string
	Saved   chan struct{}
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{answers: map[string]string{}, Saved: make(chan struct{}, 10)}
}

func (m *MemoryCache) key(ownerId, modelId, question string) string {
	return ownerId + "|" + modelId + "|" + question
}

func (m *MemoryCache) Lookup(ctx context.Context, ownerId, modelId, question string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	answer, ok := m.answers[m.key(ownerId, modelId, question)]
	return answer, ok
}

func (m *MemoryCache) Save(ctx context.Context, ownerId, modelId, question, answer string) error {
	m.mu.Lock()
	m.answers[m.key(ownerId, modelId, question)] = answer
	m.mu.Unlock()
	m.Saved <- struct{}{}
	return nil
}

func (m *MemoryCache) Invalidate(ctx context.Context, ownerId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.answers {
		if strings.HasPrefix(k, ownerId+"|") {
			delete(m.answers, k)
		}
	}
	return nil
}

// stalledStream never yields a token and ends only when its context does, without reporting why.
type stalledStream struct {
	ctx context.Context
}

func (s stalledStream) Next() bool {
	<-s.ctx.Done()
	return false
}
func (stalledStream) Current() string { return "" }
func (stalledStream) Err() error      { return nil }
func (stalledStream) Close() error    { return nil }
