package qdrantDB

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/domain/commonModels"
	"github.com/akolanti/ragrouter/internal/domain/ragErrors"
	"github.com/akolanti/ragrouter/internal/rag/embedding"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// pointNamespace seeds the UUIDv5 point ids derived from chunk unique ids.
var pointNamespace = uuid.MustParse("6f2b8c1e-4d0a-5b7e-9a3c-2e1f0d4b8a61")

var errNoProgress = errors.New("purge made no progress")

type Store struct {
	conn       *Conn
	embedder   embedding.Embedder
	collection string
	batchSize  uint32
}

func NewStore(conn *Conn, embedder embedding.Embedder, collection string) *Store {
	if collection == "" {
		collection = config.DefaultCollectionName
	}
	return &Store{conn: conn, embedder: embedder, collection: collection, batchSize: config.PurgeBatchSize}
}

func PointId(uniqueId string) string {
	return uuid.NewSHA1(pointNamespace, []byte(uniqueId)).String()
}

func (s *Store) Add(ctx context.Context, chunks []commonModels.DocChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	client, err := s.conn.collection(ctx, s.collection)
	if err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(PointId(chunk.UniqueId)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				commonModels.MetaOwnerId:     chunk.OwnerId,
				commonModels.MetaFilename:    chunk.SourceFilename,
				commonModels.MetaChunkIndex:  chunk.ChunkIndex,
				commonModels.MetaContentType: chunk.ContentType,
				commonModels.MetaUniqueId:    chunk.UniqueId,
				commonModels.MetaContent:     chunk.Text,
			}),
		}
	}

	_, err = client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	return classify("upsert", err)
}

func (s *Store) Query(ctx context.Context, text string, ownerId string, k int) (commonModels.RetrievalResult, error) {
	var result commonModels.RetrievalResult
	if k <= 0 {
		return result, nil
	}
	vector, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return result, err
	}
	client, err := s.conn.collection(ctx, s.collection)
	if err != nil {
		return result, err
	}

	hits, err := client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         ownerFilter(ownerId),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.FromContext(ctx).Error("Error querying Qdrant", "error", err)
		return result, classify("query", err)
	}
	return toResult(hits, ownerId), nil
}

// toResult maps hits, dropping any whose payload owner does not match.
func toResult(hits []*qdrant.ScoredPoint, ownerId string) commonModels.RetrievalResult {
	var result commonModels.RetrievalResult
	for _, hit := range hits {
		p := hit.GetPayload()
		if p[commonModels.MetaOwnerId].GetStringValue() != ownerId {
			logger.Warn("dropping hit with foreign owner", "point", hit.GetId().GetUuid())
			continue
		}
		result.Append(p[commonModels.MetaContent].GetStringValue(), commonModels.ChunkMetadata{
			OwnerId:     ownerId,
			Filename:    p[commonModels.MetaFilename].GetStringValue(),
			ChunkIndex:  int(p[commonModels.MetaChunkIndex].GetIntegerValue()),
			ContentType: p[commonModels.MetaContentType].GetStringValue(),
			UniqueId:    p[commonModels.MetaUniqueId].GetStringValue(),
			Score:       hit.GetScore(),
		})
	}
	return result
}

// DeleteOwner deletes by filter and falls back to scroll-and-delete-by-id when the filter delete is rejected.
func (s *Store) DeleteOwner(ctx context.Context, ownerId string) (int, error) {
	log := logger.FromContext(ctx).With("owner", ownerId)
	client, err := s.conn.collection(ctx, s.collection)
	if err != nil {
		return 0, err
	}

	count, err := client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Filter:         ownerFilter(ownerId),
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, classify("count", err)
	}
	if count == 0 {
		return 0, nil
	}

	_, err = client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelectorFilter(ownerFilter(ownerId)),
		Wait:           qdrant.PtrOf(true),
	})
	if err == nil {
		log.Info("purged owner points", "count", count)
		return int(count), nil
	}
	if isUnavailable(err) {
		return 0, classify("delete", err)
	}

	log.Warn("filter delete failed, deleting by id", "error", err)
	return s.deleteByScroll(ctx, client, ownerId)
}

func (s *Store) deleteByScroll(ctx context.Context, client pointsClient, ownerId string) (int, error) {
	deleted := 0
	var previousFirst string
	for {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		points, err := client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Filter:         ownerFilter(ownerId),
			Limit:          qdrant.PtrOf(s.batchSize),
			WithPayload:    qdrant.NewWithPayload(false),
		})
		if err != nil {
			return deleted, classify("scroll", err)
		}
		if len(points) == 0 {
			return deleted, nil
		}

		ids := make([]*qdrant.PointId, len(points))
		for i, p := range points {
			ids[i] = p.GetId()
		}
		first := ids[0].String()
		if first == previousFirst {
			return deleted, ragErrors.StoreUnavailable("qdrant delete by id", errNoProgress)
		}
		previousFirst = first

		_, err = client.Delete(ctx, &qdrant.DeletePoints{
			CollectionName: s.collection,
			Points:         qdrant.NewPointsSelectorIDs(ids),
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return deleted, classify("delete by id", err)
		}
		deleted += len(ids)
	}
}
