package googleEmbedding

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/ragrouter/internal/domain/ragErrors"
	"github.com/akolanti/ragrouter/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))

	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}

func isRateLimited(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests
	}
	if s, ok := status.FromError(err); ok {
		return s.Code() == codes.ResourceExhausted
	}
	return false
}

// classify maps provider failures onto the domain error kinds. Rate limits stay retryable.
func classify(err error, log *logger_i.Logger) error {
	if isRateLimited(err) {
		log.Warn("Rate limit hit", "error", err)
		return ragErrors.ModelInvocation("google embedding rate limited", err)
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ragErrors.ModelUnavailable("google embedding", "check GOOGLE_API_KEY", err)
		case http.StatusBadRequest:
			return ragErrors.InvalidInput("embedding request rejected", err)
		}
	}
	return ragErrors.ModelInvocation("google embedding request failed", err)
}

func collectVectors(res *genai.EmbedContentResponse, want int) ([][]float32, error) {
	if res == nil || len(res.Embeddings) != want {
		got := 0
		if res != nil {
			got = len(res.Embeddings)
		}
		return nil, ragErrors.ModelInvocation("google embedding returned an unexpected number of vectors", fmt.Errorf("sent %d texts, got %d vectors", want, got))
	}
	out := make([][]float32, 0, want)
	for _, e := range res.Embeddings {
		if e == nil {
			return nil, ragErrors.ModelInvocation("google embedding returned an empty vector", nil)
		}
		out = append(out, e.Values)
	}
	return out, nil
}
