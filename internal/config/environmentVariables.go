package config

import (
	"log/slog"
	"time"
)

const (
	LOG_LEVEL_PROD              = slog.LevelInfo
	TRACE_ID_KEY                = "traceId"
	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5
	CacheSimilarityCutoff       = 0.97

	//chunking + retrieval
	TokenizerEncoding  = "cl100k_base"
	ChunkTokenWindow   = 400
	IngestBatchSize    = 100
	RetrievalTopK      = 5
	StreamFragmentSize = 200 //characters, used when the model client cannot stream
	PurgeBatchSize     = 1000

	MaxWorkerCount    int64 = 10
	MinWorkerCount    int64 = 1
	IdleWorkerTimeout       = 1 * time.Minute

	//serverTimeouts
	ReadTimeout = 5 * time.Second
	//streaming answers from large models can take a while
	WriteTimeout           = 120 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//request processing
	QueryTimeout  = 60 * time.Second
	StreamTimeout = 110 * time.Second //below WriteTimeout so the error event still reaches the client
	IngestTimeout = 5 * time.Minute
	MaxUploadSize = 32 << 20 //32mb

	//job requests buffer limit
	BufferLimit = 100

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = "localhost"
	QdrantGrpcPort          = 6334
	QdrantPoolSize          = 1 //2-5 is preferred for prod according to documentation
	DefaultCollectionName   = "user_files"
	SemanticCacheCollection = "semantic-cache"

	//llm
	NvidiaBaseURL        = "https://integrate.api.nvidia.com/v1"
	NvidiaEmbeddingModel = "nvidia/nv-embedqa-e5-v5"
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"

	EmbeddingOutputDimensionality int32 = 1024 //nv-embedqa-e5-v5

	ProTierModel      = "nvidia/llama3-chatqa-1.5-70b"
	StandardTierModel = "nvidia/llama3-chatqa-1.5-8b"
	RouterModelName   = "meta/llama-3.1-8b-instruct"

	ModelTemperature float64 = 0.2

	GroundingInstruction = "You are a helpful assistant. Answer the user's question using only the provided information below.\n" +
		"If the answer is not supported by the provided information, say \"I don't know\"."
	SafeFailureResponse = "Sorry, I couldn't generate an answer right now. Please try again in a moment."

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis has 16 DB we can use
	RedisJobStore = 0

	RedisJobStoreTTL = 24 * time.Hour
)
