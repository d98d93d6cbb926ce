package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	VectorStoreQdrant  = "qdrant"
	VectorStoreChromem = "chromem"

	ProviderNvidia = "nvidia"
	ProviderGoogle = "google"
	ProviderGemini = "gemini"

	RouterStrategyHeuristic = "heuristic"
	RouterStrategyDelegate  = "delegate"
)

// Config is the runtime configuration. Every key can be set as RAG_<KEY> or plain <KEY>.
type Config struct {
	IsProd     bool   `envconfig:"IS_PROD" default:"false"`
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":3000"`

	AuthToken        string `envconfig:"AUTH_TOKEN"`
	RateLimitEnabled bool   `envconfig:"RATE_LIMIT_ENABLED" default:"true"`

	VectorStore   string `envconfig:"VECTOR_STORE" default:"qdrant"`
	Collection    string `envconfig:"COLLECTION" default:"user_files"`
	QdrantHost    string `envconfig:"QDRANT_HOST" default:"localhost"`
	QdrantPort    int    `envconfig:"QDRANT_PORT" default:"6334"`
	QdrantAPIKey  string `envconfig:"QDRANT_API_KEY"`
	QdrantUseTLS  bool   `envconfig:"QDRANT_USE_TLS" default:"false"`
	ChromemPath   string `envconfig:"CHROMEM_PATH"`
	SemanticCache bool   `envconfig:"SEMANTIC_CACHE" default:"false"`

	LLMProvider          string `envconfig:"LLM_PROVIDER" default:"nvidia"`
	EmbeddingProvider    string `envconfig:"EMBEDDING_PROVIDER" default:"nvidia"`
	NvidiaAPIKey         string `envconfig:"NVIDIA_API_KEY"`
	NvidiaBaseURL        string `envconfig:"NVIDIA_BASE_URL" default:"https://integrate.api.nvidia.com/v1"`
	NvidiaEmbeddingModel string `envconfig:"NVIDIA_EMBEDDING_MODEL" default:"nvidia/nv-embedqa-e5-v5"`
	GoogleAPIKey         string `envconfig:"GOOGLE_API_KEY"`
	GeminiModel          string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash-lite-preview-09-2025"`
	GoogleEmbeddingModel string `envconfig:"GOOGLE_EMBEDDING_MODEL" default:"gemini-embedding-001"`
	EmbeddingDimension   int32  `envconfig:"EMBEDDING_DIMENSION" default:"1024"`

	StreamingEnabled bool   `envconfig:"STREAMING_ENABLED" default:"true"`
	ProModel         string `envconfig:"PRO_MODEL" default:"nvidia/llama3-chatqa-1.5-70b"`
	StandardModel    string `envconfig:"STANDARD_MODEL" default:"nvidia/llama3-chatqa-1.5-8b"`
	RouterStrategy   string `envconfig:"ROUTER_STRATEGY" default:"heuristic"`
	RouterModel      string `envconfig:"ROUTER_MODEL" default:"meta/llama-3.1-8b-instruct"`
	MaxRetries       uint64 `envconfig:"MAX_RETRIES" default:"3"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("RAG", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Validate only rejects values that can never work. Missing API keys are reported
// per request as "model unavailable" so the rest of the API stays up.
func (c *Config) Validate() error {
	switch c.VectorStore {
	case VectorStoreQdrant, VectorStoreChromem:
	default:
		return fmt.Errorf("unknown vector store %q (want %s or %s)", c.VectorStore, VectorStoreQdrant, VectorStoreChromem)
	}
	switch c.RouterStrategy {
	case RouterStrategyHeuristic, RouterStrategyDelegate:
	default:
		return fmt.Errorf("unknown router strategy %q (want %s or %s)", c.RouterStrategy, RouterStrategyHeuristic, RouterStrategyDelegate)
	}
	if c.EmbeddingDimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive, got %d", c.EmbeddingDimension)
	}
	if c.Collection == "" {
		return fmt.Errorf("collection name is empty")
	}
	return nil
}

func (c *Config) HasNvidia() bool {
	return c.NvidiaAPIKey != ""
}

func (c *Config) HasGoogle() bool {
	return c.GoogleAPIKey != ""
}

func (c *Config) AuthDisabled() bool {
	return c.AuthToken == ""
}
