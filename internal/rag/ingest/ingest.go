package ingest

import (
	"context"
	"fmt"

	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/domain/commonModels"
	"github.com/akolanti/ragrouter/internal/rag/vectorDB"
	"github.com/akolanti/ragrouter/pkg/logger_i"
	"github.com/google/uuid"
)

var logger = logger_i.NewLogger("Document Ingestion")

// UniqueId is "<filename>-<index>-<random uuid>".
func UniqueId(filename string, index int) string {
	return fmt.Sprintf("%s-%d-%s", filename, index, uuid.NewString())
}

func PrepareChunks(doc commonModels.Document, texts []string) []commonModels.DocChunk {
	chunks := make([]commonModels.DocChunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, commonModels.DocChunk{
			OwnerId:        doc.OwnerId,
			SourceFilename: doc.Filename,
			ChunkIndex:     i,
			ContentType:    doc.ContentType,
			Text:           text,
			UniqueId:       UniqueId(doc.Filename, i),
		})
	}
	return chunks
}

// BatchIngest hands chunks to the store in batches; the store embeds them.
func BatchIngest(ctx context.Context, chunks []commonModels.DocChunk, store vectorDB.Store) error {
	log := logger.FromContext(ctx)
	batchSize := config.IngestBatchSize

	for i := 0; i < len(chunks); i += batchSize {
		end := min(i+batchSize, len(chunks))
		if err := ctx.Err(); err != nil {
			return err
		}

		log.Debug("Storing batch", "from", i, "to", end)
		if err := store.Add(ctx, chunks[i:end]); err != nil {
			return fmt.Errorf("storing chunks %d-%d: %w", i, end, err)
		}
	}
	return nil
}
