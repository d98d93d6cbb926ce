package embedding

import (
	"context"

	"github.com/akolanti/ragrouter/internal/rag/retry"
)

type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type retrying struct {
	next       Embedder
	maxRetries uint64
}

// WithRetry wraps an embedder with exponential backoff. Configuration errors are not retried.
func WithRetry(e Embedder, maxRetries uint64) Embedder {
	return &retrying{next: e, maxRetries: maxRetries}
}

func (r *retrying) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return retry.Do(ctx, r.maxRetries, func() ([][]float32, error) {
		return r.next.EmbedDocuments(ctx, texts)
	})
}

func (r *retrying) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return retry.Do(ctx, r.maxRetries, func() ([]float32, error) {
		return r.next.EmbedQuery(ctx, text)
	})
}

// Unavailable stands in for an embedder that could not be configured.
type Unavailable struct {
	Err error
}

func (u Unavailable) EmbedDocuments(context.Context, []string) ([][]float32, error) {
	return nil, u.Err
}

func (u Unavailable) EmbedQuery(context.Context, string) ([]float32, error) {
	return nil, u.Err
}
