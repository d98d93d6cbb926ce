package llm

import (
	"context"

	"github.com/akolanti/ragrouter/internal/rag/retry"
)

// SyncClient sends one prompt to a named model and returns the full answer.
type SyncClient interface {
	Invoke(ctx context.Context, modelId string, prompt string) (string, error)
}

// TokenStream yields answer fragments in provider order. Close must be called once the caller is done.
type TokenStream interface {
	Next() bool
	Current() string
	Err() error
	Close() error
}

type StreamingClient interface {
	SyncClient
	Stream(ctx context.Context, modelId string, prompt string) (TokenStream, error)
}

// Capabilities is what the responder gets: Streamer is nil when the provider or the deployment cannot stream.
type Capabilities struct {
	Client   SyncClient
	Streamer StreamingClient
}

func Resolve(c SyncClient, streamingEnabled bool) Capabilities {
	caps := Capabilities{Client: c}
	if !streamingEnabled {
		return caps
	}
	if s, ok := c.(StreamingClient); ok {
		caps.Streamer = s
	}
	return caps
}

func (c Capabilities) CanStream() bool {
	return c.Streamer != nil
}

// Unavailable replaces a client that failed to initialize; every call reports the original configuration error.
type Unavailable struct {
	Err error
}

func (u Unavailable) Invoke(context.Context, string, string) (string, error) {
	return "", u.Err
}

func (u Unavailable) Stream(context.Context, string, string) (TokenStream, error) {
	return nil, u.Err
}

type retrying struct {
	next       SyncClient
	maxRetries uint64
}

type retryingStreamer struct {
	retrying
	streamer StreamingClient
}

// WithRetry retries the call that opens a response. A stream that fails midway is not restarted.
func WithRetry(c SyncClient, maxRetries uint64) SyncClient {
	r := retrying{next: c, maxRetries: maxRetries}
	if s, ok := c.(StreamingClient); ok {
		return &retryingStreamer{retrying: r, streamer: s}
	}
	return &r
}

func (r *retrying) Invoke(ctx context.Context, modelId string, prompt string) (string, error) {
	return retry.Do(ctx, r.maxRetries, func() (string, error) {
		return r.next.Invoke(ctx, modelId, prompt)
	})
}

func (r *retryingStreamer) Stream(ctx context.Context, modelId string, prompt string) (TokenStream, error) {
	return retry.Do(ctx, r.maxRetries, func() (TokenStream, error) {
		return r.streamer.Stream(ctx, modelId, prompt)
	})
}

// SliceStream replays fixed fragments. Used for cached answers and in tests.
type SliceStream struct {
	parts []string
	pos   int
	err   error
}

func NewSliceStream(parts []string, err error) *SliceStream {
	return &SliceStream{parts: parts, pos: -1, err: err}
}

func (s *SliceStream) Next() bool {
	if s.pos+1 >= len(s.parts) {
		s.pos = len(s.parts)
		return false
	}
	s.pos++
	return true
}

func (s *SliceStream) Current() string {
	if s.pos < 0 || s.pos >= len(s.parts) {
		return ""
	}
	return s.parts[s.pos]
}

func (s *SliceStream) Err() error {
	if s.pos >= len(s.parts) {
		return s.err
	}
	return nil
}

func (s *SliceStream) Close() error { return nil }
