package qdrantDB

import (
	"context"
	"time"

	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/domain/commonModels"
	"github.com/akolanti/ragrouter/internal/rag/embedding"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

const (
	cacheModelKey    = "model_id"
	cacheQuestionKey = "question"
	cacheAnswerKey   = "answer"
)

// SemanticCache answers repeated questions per owner and model without calling the model.
type SemanticCache struct {
	conn       *Conn
	embedder   embedding.Embedder
	collection string
	cutoff     float32
}

func NewSemanticCache(conn *Conn, embedder embedding.Embedder) *SemanticCache {
	return &SemanticCache{
		conn:       conn,
		embedder:   embedder,
		collection: config.SemanticCacheCollection,
		cutoff:     config.CacheSimilarityCutoff,
	}
}

// Lookup never fails the request, a cache error is a miss.
func (c *SemanticCache) Lookup(ctx context.Context, ownerId, modelId, question string) (string, bool) {
	log := logger.FromContext(ctx)

	vector, err := c.embedder.EmbedQuery(ctx, question)
	if err != nil {
		log.Warn("cache lookup embedding failed", "error", err)
		return "", false
	}
	client, err := c.conn.collection(ctx, c.collection)
	if err != nil {
		log.Warn("cache unavailable", "error", err)
		return "", false
	}

	hits, err := client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: c.collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         ownerFilter(ownerId, qdrant.NewMatch(cacheModelKey, modelId)),
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil || len(hits) == 0 {
		if err != nil {
			log.Error("Cache Query failed", "error", err)
		}
		return "", false
	}

	return c.accept(hits[0], ownerId, modelId)
}

func (c *SemanticCache) accept(hit *qdrant.ScoredPoint, ownerId, modelId string) (string, bool) {
	if hit.GetScore() < c.cutoff {
		return "", false
	}
	p := hit.GetPayload()
	if p[commonModels.MetaOwnerId].GetStringValue() != ownerId || p[cacheModelKey].GetStringValue() != modelId {
		return "", false
	}
	answer := p[cacheAnswerKey].GetStringValue()
	if answer == "" {
		return "", false
	}
	logger.Debug("cache hit", "semantic similarity score", hit.GetScore())
	return answer, true
}

func (c *SemanticCache) Save(ctx context.Context, ownerId, modelId, question, answer string) error {
	vector, err := c.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return err
	}
	client, err := c.conn.collection(ctx, c.collection)
	if err != nil {
		return err
	}

	_, err = client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.collection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(uuid.NewString()),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					commonModels.MetaOwnerId: ownerId,
					cacheModelKey:            modelId,
					cacheQuestionKey:         question,
					cacheAnswerKey:           answer,
					"timestamp":              time.Now().Unix(),
				}),
			},
		},
	})
	if err != nil {
		logger.FromContext(ctx).Error("Saving answer to cache failed", "error", err)
	}
	return classify("cache upsert", err)
}

func (c *SemanticCache) Invalidate(ctx context.Context, ownerId string) error {
	client, err := c.conn.collection(ctx, c.collection)
	if err != nil {
		return err
	}
	_, err = client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: c.collection,
		Points:         qdrant.NewPointsSelectorFilter(ownerFilter(ownerId)),
		Wait:           qdrant.PtrOf(true),
	})
	return classify("cache invalidate", err)
}
