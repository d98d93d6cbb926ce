package nvidiaEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/domain/ragErrors"
	"github.com/akolanti/ragrouter/internal/rag/embedding"
	"github.com/akolanti/ragrouter/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// NVIDIA retrieval embedders are asymmetric: documents and queries are embedded differently.
const (
	inputTypePassage = "passage"
	inputTypeQuery   = "query"
)

var logger = logger_i.NewLogger("nvidia_embedding")

type client struct {
	api   openai.Client
	model string
}

// New builds an embedder against an OpenAI-compatible endpoint (integrate.api.nvidia.com by default).
func New(apiKey string, baseURL string, model string, httpClient *http.Client) (embedding.Embedder, error) {
	if apiKey == "" {
		return nil, ragErrors.ModelUnavailable("nvidia embedding", "set NVIDIA_API_KEY (or RAG_NVIDIA_API_KEY)", nil)
	}
	if baseURL == "" {
		baseURL = config.NvidiaBaseURL
	}
	if model == "" {
		model = config.NvidiaEmbeddingModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	logger.Info("NVIDIA embedding client created", "model", model)
	return &client{api: openai.NewClient(opts...), model: model}, nil
}

func (c *client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return c.embed(ctx, texts, inputTypePassage)
}

func (c *client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.embed(ctx, []string{text}, inputTypeQuery)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (c *client) embed(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	log := logger.FromContext(ctx)
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: c.model,
	}, option.WithJSONSet("input_type", inputType), option.WithJSONSet("truncate", "END"))
	if err != nil {
		log.Error("Error getting embeddings from NVIDIA", "error", err)
		return nil, classify(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(resp.Data))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(out) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		out[d.Index] = toFloat32(d.Embedding)
	}
	return out, nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}

// classify turns auth failures into configuration errors so they are not retried.
func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ragErrors.ModelUnavailable("nvidia embedding", "check NVIDIA_API_KEY", err)
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return ragErrors.InvalidInput("embedding request rejected", err)
		}
	}
	return ragErrors.ModelInvocation("embedding request failed", err)
}
