package vectorDB

import (
	"context"

	"github.com/akolanti/ragrouter/internal/domain/commonModels"
)

// Store is an owner-partitioned chunk collection. Implementations embed texts themselves
// and report connection or auth failures as ragErrors.StoreUnavailable without retrying.
type Store interface {
	Add(ctx context.Context, chunks []commonModels.DocChunk) error
	// Query never returns chunks of another owner.
	Query(ctx context.Context, text string, ownerId string, k int) (commonModels.RetrievalResult, error)
	// DeleteOwner is idempotent and returns how many chunks were removed.
	DeleteOwner(ctx context.Context, ownerId string) (int, error)
}

// AnswerCache remembers answers per owner and model for near-identical questions.
type AnswerCache interface {
	Lookup(ctx context.Context, ownerId string, modelId string, question string) (string, bool)
	Save(ctx context.Context, ownerId string, modelId string, question string, answer string) error
	Invalidate(ctx context.Context, ownerId string) error
}
