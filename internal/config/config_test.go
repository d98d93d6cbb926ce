package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, VectorStoreQdrant, cfg.VectorStore)
	assert.Equal(t, DefaultCollectionName, cfg.Collection)
	assert.Equal(t, ProTierModel, cfg.ProModel)
	assert.Equal(t, StandardTierModel, cfg.StandardModel)
	assert.Equal(t, RouterStrategyHeuristic, cfg.RouterStrategy)
	assert.Equal(t, EmbeddingOutputDimensionality, cfg.EmbeddingDimension)
	assert.True(t, cfg.StreamingEnabled)
}

func TestLoad_PrefixedAndPlainKeys(t *testing.T) {
	t.Setenv("NVIDIA_API_KEY", "plain-key")
	t.Setenv("RAG_VECTOR_STORE", "chromem")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "plain-key", cfg.NvidiaAPIKey)
	assert.True(t, cfg.HasNvidia())
	assert.Equal(t, VectorStoreChromem, cfg.VectorStore)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown store", mutate: func(c *Config) { c.VectorStore = "pinecone" }, wantErr: true},
		{name: "unknown strategy", mutate: func(c *Config) { c.RouterStrategy = "random" }, wantErr: true},
		{name: "zero dimension", mutate: func(c *Config) { c.EmbeddingDimension = 0 }, wantErr: true},
		{name: "empty collection", mutate: func(c *Config) { c.Collection = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Config{
				VectorStore:        VectorStoreQdrant,
				RouterStrategy:     RouterStrategyDelegate,
				EmbeddingDimension: 768,
				Collection:         "c",
			}
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
