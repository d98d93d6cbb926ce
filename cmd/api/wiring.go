package main

import (
	"context"
	"net/http"

	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/data/store"
	"github.com/akolanti/ragrouter/internal/domain/jobModel"
	"github.com/akolanti/ragrouter/internal/domain/ragErrors"
	"github.com/akolanti/ragrouter/internal/rag/chunker"
	"github.com/akolanti/ragrouter/internal/rag/embedding"
	"github.com/akolanti/ragrouter/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/ragrouter/internal/rag/embedding/nvidiaEmbedding"
	"github.com/akolanti/ragrouter/internal/rag/llm"
	"github.com/akolanti/ragrouter/internal/rag/llm/gemini"
	"github.com/akolanti/ragrouter/internal/rag/llm/nvidia"
	"github.com/akolanti/ragrouter/internal/rag/vectorDB"
	"github.com/akolanti/ragrouter/internal/rag/vectorDB/chromemDB"
	"github.com/akolanti/ragrouter/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/ragrouter/pkg/logger_i"
)

var wiringLogger = logger_i.NewLogger("wiring")

// A provider that cannot be built is replaced by a stand-in that reports
// "model unavailable" per request, so the rest of the API keeps serving.

func buildEmbedder(ctx context.Context, cfg *config.Config, httpClient *http.Client) embedding.Embedder {
	var (
		e   embedding.Embedder
		err error
	)
	switch cfg.EmbeddingProvider {
	case config.ProviderNvidia:
		e, err = nvidiaEmbedding.New(cfg.NvidiaAPIKey, cfg.NvidiaBaseURL, cfg.NvidiaEmbeddingModel, httpClient)
	case config.ProviderGoogle, config.ProviderGemini:
		e, err = googleEmbedding.New(ctx, cfg.GoogleAPIKey, cfg.GoogleEmbeddingModel, cfg.EmbeddingDimension, httpClient)
	default:
		err = ragErrors.Configuration("unknown embedding provider "+cfg.EmbeddingProvider, "set EMBEDDING_PROVIDER to nvidia or google", nil)
	}
	if err != nil {
		wiringLogger.Error("Embedding provider unavailable", "provider", cfg.EmbeddingProvider, "err", err)
		return embedding.Unavailable{Err: err}
	}
	return embedding.WithRetry(e, cfg.MaxRetries)
}

func buildChatClient(ctx context.Context, cfg *config.Config, httpClient *http.Client) llm.SyncClient {
	var (
		c   llm.StreamingClient
		err error
	)
	switch cfg.LLMProvider {
	case config.ProviderNvidia:
		c, err = nvidia.New(cfg.NvidiaAPIKey, cfg.NvidiaBaseURL, "", config.ModelTemperature, httpClient)
	case config.ProviderGoogle, config.ProviderGemini:
		c, err = gemini.New(ctx, cfg.GoogleAPIKey, cfg.GeminiModel, "", config.ModelTemperature, httpClient)
	default:
		err = ragErrors.Configuration("unknown llm provider "+cfg.LLMProvider, "set LLM_PROVIDER to nvidia or gemini", nil)
	}
	if err != nil {
		wiringLogger.Error("LLM provider unavailable", "provider", cfg.LLMProvider, "err", err)
		return llm.Unavailable{Err: err}
	}
	return llm.WithRetry(c, cfg.MaxRetries)
}

// buildVectorStore returns the chunk store, the optional answer cache and a closer.
func buildVectorStore(cfg *config.Config, embedder embedding.Embedder) (vectorDB.Store, vectorDB.AnswerCache, func(), error) {
	switch cfg.VectorStore {
	case config.VectorStoreChromem:
		s, err := chromemDB.New(cfg.ChromemPath, cfg.Collection, embedder)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.SemanticCache {
			wiringLogger.Warn("Semantic cache needs the qdrant vector store, running without it")
		}
		return s, nil, func() {}, nil

	default:
		conn := qdrantDB.NewConn(qdrantDB.Options{
			Host:      cfg.QdrantHost,
			Port:      cfg.QdrantPort,
			APIKey:    cfg.QdrantAPIKey,
			UseTLS:    cfg.QdrantUseTLS,
			Dimension: uint64(cfg.EmbeddingDimension),
		})
		closer := func() {
			if err := conn.Close(); err != nil {
				wiringLogger.Error("Error closing qdrant connection", "err", err)
			}
		}
		var cache vectorDB.AnswerCache
		if cfg.SemanticCache {
			cache = qdrantDB.NewSemanticCache(conn, embedder)
		}
		return qdrantDB.NewStore(conn, embedder, cfg.Collection), cache, closer, nil
	}
}

// buildChunker returns nil when the encoding cannot be loaded; uploads then fail with a configuration error.
func buildChunker() *chunker.Chunker {
	tokenizer, err := chunker.NewTiktoken(config.TokenizerEncoding)
	if err != nil {
		wiringLogger.Error("Tokenizer unavailable, uploads are disabled", "encoding", config.TokenizerEncoding, "err", err)
		return nil
	}
	return chunker.New(tokenizer, config.ChunkTokenWindow)
}

func buildJobStore(ctx context.Context, cfg *config.Config) jobModel.JobStore {
	redisJobs, err := store.GetRedisJobStore(ctx, cfg)
	if err != nil {
		wiringLogger.Warn("Redis job store is offline, using in-memory job store", "err", err)
		return store.InitInMemoryJobStore()
	}
	return redisJobs
}
