package googleEmbedding

import (
	"context"
	"net/http"

	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/domain/ragErrors"
	"github.com/akolanti/ragrouter/internal/rag/embedding"
	"github.com/akolanti/ragrouter/pkg/logger_i"
	"google.golang.org/genai"
)

const (
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

var logger = logger_i.NewLogger("google_embedding")

type client struct {
	genAi     *genai.Client
	model     string
	dimension int32
}

// New returns a Gemini embedder. A missing key is a configuration error, not a nil client.
func New(ctx context.Context, apiKey string, modelName string, dimension int32, httpClient *http.Client) (embedding.Embedder, error) {
	if apiKey == "" {
		return nil, ragErrors.ModelUnavailable("google embedding", "set GOOGLE_API_KEY (or RAG_GOOGLE_API_KEY)", nil)
	}
	if modelName == "" {
		modelName = config.GoogleEmbeddingModel
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		logger.Error("Error creating Google Embedding client", "error", err)
		return nil, ragErrors.ModelUnavailable("google embedding", "check GOOGLE_API_KEY", err)
	}
	logger.Info("Google Embedding client created", "model", modelName)
	return &client{genAi: c, model: modelName, dimension: dimension}, nil
}

func (c *client) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vecs, err := c.doCall(ctx, []string{query}, taskQuery)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (c *client) EmbedDocuments(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	return c.doCall(ctx, chunks, taskDocument)
}

func (c *client) doCall(ctx context.Context, texts []string, task string) ([][]float32, error) {
	log := logger.FromContext(ctx)
	dim := c.dimension
	res, err := c.genAi.Models.EmbedContent(ctx, c.model, getContent(texts), &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
		TaskType:             task,
	})
	if err != nil {
		log.Error("Error getting Embeddings from Google", "error", err, "task", task)
		return nil, classify(err, log)
	}
	return collectVectors(res, len(texts))
}
