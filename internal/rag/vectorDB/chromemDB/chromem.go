package chromemDB

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/domain/commonModels"
	"github.com/akolanti/ragrouter/internal/domain/ragErrors"
	"github.com/akolanti/ragrouter/internal/rag/embedding"
	"github.com/akolanti/ragrouter/pkg/logger_i"
	"github.com/philippgille/chromem-go"
)

var logger = logger_i.NewLogger("chromem")

// Store is the embedded vector store, in memory or persisted under a directory.
type Store struct {
	// writes are serialized so DeleteOwner can report an exact count.
	// Queries hold the read lock so the collection cannot shrink between Count and QueryEmbedding.
	mu         sync.RWMutex
	collection *chromem.Collection
	embedder   embedding.Embedder
}

// New opens the collection. An empty path keeps everything in memory.
func New(path string, collectionName string, embedder embedding.Embedder) (*Store, error) {
	if collectionName == "" {
		collectionName = config.DefaultCollectionName
	}

	db := chromem.NewDB()
	if path != "" {
		var err error
		db, err = chromem.NewPersistentDB(path, true)
		if err != nil {
			return nil, ragErrors.StoreUnavailable("could not open chromem database at "+path, err)
		}
	}

	c, err := db.GetOrCreateCollection(collectionName, nil, chromem.EmbeddingFunc(embedder.EmbedQuery))
	if err != nil {
		return nil, ragErrors.StoreUnavailable("could not open chromem collection", err)
	}
	logger.Info("chromem collection ready", "collection", collectionName, "persistent", path != "", "documents", c.Count())
	return &Store{collection: c, embedder: embedder}, nil
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

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:        c.UniqueId,
			Metadata:  c.Metadata(),
			Embedding: vectors[i],
			Content:   c.Text,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("chromem add failed: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, text string, ownerId string, k int) (commonModels.RetrievalResult, error) {
	var result commonModels.RetrievalResult

	if k <= 0 || s.collection.Count() == 0 {
		return result, nil
	}
	vector, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return result, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	// chromem rejects n larger than the collection
	n := min(k, s.collection.Count())
	if n <= 0 {
		return result, nil
	}
	hits, err := s.collection.QueryEmbedding(ctx, vector, n, map[string]string{commonModels.MetaOwnerId: ownerId}, nil)
	if err != nil {
		return result, fmt.Errorf("chromem query failed: %w", err)
	}

	for _, hit := range hits {
		if hit.Metadata[commonModels.MetaOwnerId] != ownerId {
			continue
		}
		idx, _ := strconv.Atoi(hit.Metadata[commonModels.MetaChunkIndex])
		result.Append(hit.Content, commonModels.ChunkMetadata{
			OwnerId:     ownerId,
			Filename:    hit.Metadata[commonModels.MetaFilename],
			ChunkIndex:  idx,
			ContentType: hit.Metadata[commonModels.MetaContentType],
			UniqueId:    hit.ID,
			Score:       hit.Similarity,
		})
	}
	return result, nil
}

func (s *Store) DeleteOwner(ctx context.Context, ownerId string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.collection.Count()
	if err := s.collection.Delete(ctx, map[string]string{commonModels.MetaOwnerId: ownerId}, nil); err != nil {
		return 0, fmt.Errorf("chromem delete failed: %w", err)
	}
	deleted := before - s.collection.Count()
	logger.FromContext(ctx).Info("purged owner documents", "owner", ownerId, "count", deleted)
	return deleted, nil
}
