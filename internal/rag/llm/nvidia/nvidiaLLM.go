package nvidia

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/domain/ragErrors"
	"github.com/akolanti/ragrouter/internal/rag/llm"
	"github.com/akolanti/ragrouter/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
)

var logger = logger_i.NewLogger("llm_nvidia")

type llmClient struct {
	api         openai.Client
	system      string
	temperature float64
}

// New builds a chat client for the NVIDIA-hosted catalog. The model id is chosen per call.
func New(apiKey, baseURL, systemInstruction string, temperature float64, httpClient *http.Client) (llm.StreamingClient, error) {
	if apiKey == "" {
		return nil, ragErrors.ModelUnavailable("nvidia", "set NVIDIA_API_KEY (or RAG_NVIDIA_API_KEY)", nil)
	}
	if baseURL == "" {
		baseURL = config.NvidiaBaseURL
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	logger.Info("NVIDIA chat client created", "baseURL", baseURL)
	return &llmClient{api: openai.NewClient(opts...), system: systemInstruction, temperature: temperature}, nil
}

func (c *llmClient) params(modelId, prompt string) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if c.system != "" {
		messages = append(messages, openai.SystemMessage(c.system))
	}
	messages = append(messages, openai.UserMessage(prompt))
	return openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       modelId,
		Temperature: openai.Float(c.temperature),
	}
}

func (c *llmClient) Invoke(ctx context.Context, modelId string, prompt string) (string, error) {
	log := logger.FromContext(ctx).With("model", modelId)
	resp, err := c.api.Chat.Completions.New(ctx, c.params(modelId, prompt))
	if err != nil {
		log.Error("chat completion failed", "error", err)
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", ragErrors.ModelInvocation("model returned no choices", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *llmClient) Stream(ctx context.Context, modelId string, prompt string) (llm.TokenStream, error) {
	s := c.api.Chat.Completions.NewStreaming(ctx, c.params(modelId, prompt))
	// the HTTP error, if any, surfaces before the first chunk
	if err := s.Err(); err != nil {
		_ = s.Close()
		logger.FromContext(ctx).Error("opening chat stream failed", "model", modelId, "error", err)
		return nil, classify(err)
	}
	return &chunkStream{inner: s}, nil
}

type chunkStream struct {
	inner   *ssestream.Stream[openai.ChatCompletionChunk]
	current string
}

// Next skips role-only and empty deltas.
func (s *chunkStream) Next() bool {
	for s.inner.Next() {
		chunk := s.inner.Current()
		text := ""
		for _, choice := range chunk.Choices {
			text += choice.Delta.Content
		}
		if text != "" {
			s.current = text
			return true
		}
	}
	s.current = ""
	return false
}

func (s *chunkStream) Current() string { return s.current }

func (s *chunkStream) Err() error {
	if err := s.inner.Err(); err != nil {
		return classify(err)
	}
	return nil
}

func (s *chunkStream) Close() error { return s.inner.Close() }

func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ragErrors.ModelUnavailable("nvidia", "check NVIDIA_API_KEY", err)
		case http.StatusNotFound:
			return ragErrors.InvalidInput("unknown model", err)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return ragErrors.ModelInvocation("nvidia chat request failed", err)
}
