package gemini

import (
	"context"
	"errors"
	"iter"
	"net/http"
	"strings"

	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/domain/ragErrors"
	"github.com/akolanti/ragrouter/internal/rag/llm"
	"github.com/akolanti/ragrouter/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client       *genai.Client
	defaultModel string
	system       string
	temperature  float32
}

var logger = logger_i.NewLogger("llm_gemini")

// New returns a Gemini chat client. Routed ids outside the Gemini family run on defaultModel.
func New(ctx context.Context, apiKey, defaultModel, systemInstruction string, temperature float64, httpClient *http.Client) (llm.StreamingClient, error) {
	if apiKey == "" {
		return nil, ragErrors.ModelUnavailable("gemini", "set GOOGLE_API_KEY (or RAG_GOOGLE_API_KEY)", nil)
	}
	if defaultModel == "" {
		defaultModel = config.GeminiModelName
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		logger.Error("Error creating Gemini client", "error", err)
		return nil, ragErrors.ModelUnavailable("gemini", "check GOOGLE_API_KEY", err)
	}
	logger.Info("Gemini client created", "model", defaultModel)
	return &llmClient{client: c, defaultModel: defaultModel, system: systemInstruction, temperature: float32(temperature)}, nil
}

func (c *llmClient) contentConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(c.temperature)}
	if c.system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: c.system}}}
	}
	return cfg
}

func (c *llmClient) model(modelId string) string {
	if strings.HasPrefix(modelId, "gemini") {
		return modelId
	}
	return c.defaultModel
}

func (c *llmClient) Invoke(ctx context.Context, modelId string, prompt string) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, c.model(modelId), genai.Text(prompt), c.contentConfig())
	if err != nil {
		logger.FromContext(ctx).Error("Gemini generate failed", "model", modelId, "error", err)
		return "", classify(err)
	}
	return result.Text(), nil
}

func (c *llmClient) Stream(ctx context.Context, modelId string, prompt string) (llm.TokenStream, error) {
	seq := c.client.Models.GenerateContentStream(ctx, c.model(modelId), genai.Text(prompt), c.contentConfig())
	return newSeqStream(seq), nil
}

// seqStream adapts the SDK's range-over-func iterator to the pull-style TokenStream.
type seqStream struct {
	next    func() (*genai.GenerateContentResponse, error, bool)
	stop    func()
	current string
	err     error
}

func newSeqStream(seq iter.Seq2[*genai.GenerateContentResponse, error]) *seqStream {
	next, stop := iter.Pull2(seq)
	return &seqStream{next: next, stop: stop}
}

func (s *seqStream) Next() bool {
	if s.err != nil {
		return false
	}
	for {
		resp, err, ok := s.next()
		if !ok {
			s.current = ""
			return false
		}
		if err != nil {
			s.err = classify(err)
			s.current = ""
			return false
		}
		if resp == nil {
			continue
		}
		if text := resp.Text(); text != "" {
			s.current = text
			return true
		}
	}
}

func (s *seqStream) Current() string { return s.current }
func (s *seqStream) Err() error      { return s.err }

func (s *seqStream) Close() error {
	s.stop()
	return nil
}

func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ragErrors.ModelUnavailable("gemini", "check GOOGLE_API_KEY", err)
		case http.StatusNotFound:
			return ragErrors.InvalidInput("unknown model", err)
		}
	}
	return ragErrors.ModelInvocation("gemini request failed", err)
}
