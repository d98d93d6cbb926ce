package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/domain/commonModels"
	"github.com/akolanti/ragrouter/internal/domain/ragErrors"
	"github.com/akolanti/ragrouter/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var logger = logger_i.NewLogger("Qdrant")

// pointsClient is the part of *qdrant.Client the stores use.
type pointsClient interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	CreateFieldIndex(ctx context.Context, request *qdrant.CreateFieldIndexCollection) (*qdrant.UpdateResult, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Count(ctx context.Context, request *qdrant.CountPoints) (uint64, error)
	Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
	Scroll(ctx context.Context, request *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, error)
	Close() error
}

type Options struct {
	Host      string
	Port      int
	APIKey    string
	UseTLS    bool
	Dimension uint64
}

// Conn is a lazily dialed Qdrant handle shared by the chunk store and the answer cache.
// A failed dial is not remembered, the next call dials again.
type Conn struct {
	mu      sync.Mutex
	opts    Options
	dial    func(Options) (pointsClient, error)
	client  pointsClient
	ensured map[string]bool
}

func NewConn(opts Options) *Conn {
	if opts.Host == "" {
		opts.Host = config.QdrantHost
	}
	if opts.Port == 0 {
		opts.Port = config.QdrantGrpcPort
	}
	if opts.Dimension == 0 {
		opts.Dimension = uint64(config.EmbeddingOutputDimensionality)
	}
	return &Conn{opts: opts, dial: dialQdrant, ensured: map[string]bool{}}
}

func dialQdrant(opts Options) (pointsClient, error) {
	return qdrant.NewClient(&qdrant.Config{
		Host:     opts.Host,
		Port:     opts.Port,
		APIKey:   opts.APIKey,
		UseTLS:   opts.UseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
}

// collection returns the client after making sure the named collection and its owner index exist.
func (c *Conn) collection(ctx context.Context, name string) (pointsClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		client, err := c.dial(c.opts)
		if err != nil {
			logger.Error("could not instantiate Qdrant client", "host", c.opts.Host, "error", err)
			return nil, ragErrors.StoreUnavailable("could not connect to qdrant", err)
		}
		c.client = client
		logger.Info("Qdrant client created", "host", c.opts.Host, "port", c.opts.Port)
	}
	if c.ensured[name] {
		return c.client, nil
	}

	initCtx, cancel := context.WithTimeout(ctx, config.QdrantConnectionTimeout)
	defer cancel()
	if err := createCollection(initCtx, c.client, name, c.opts.Dimension); err != nil {
		logger.Error("could not create collection", "collectionName", name, "error", err)
		if ragErrors.IsStoreUnavailable(err) {
			// drop the handle so the next request dials again
			_ = c.client.Close()
			c.client = nil
		}
		return nil, err
	}
	c.ensured[name] = true
	return c.client, nil
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	logger.Info("Shutting down Qdrant")
	err := c.client.Close()
	c.client = nil
	c.ensured = map[string]bool{}
	return err
}

func createCollection(ctx context.Context, client pointsClient, collectionName string, dimension uint64) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return classify("checking collection", err)
	}
	if !exists {
		err = client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     dimension,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return classify("creating collection", err)
		}
	}

	_, err = client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: collectionName,
		FieldName:      commonModels.MetaOwnerId,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return classify("creating owner index", err)
	}
	return nil
}

func ownerFilter(ownerId string, extra ...*qdrant.Condition) *qdrant.Filter {
	must := append([]*qdrant.Condition{qdrant.NewMatch(commonModels.MetaOwnerId, ownerId)}, extra...)
	return &qdrant.Filter{Must: must}
}

func isUnavailable(err error) bool {
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unavailable, codes.Unauthenticated, codes.PermissionDenied, codes.DeadlineExceeded:
			return true
		}
	}
	return false
}

// classify reports connection and auth failures as StoreUnavailable and wraps everything else.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if isUnavailable(err) {
		return ragErrors.StoreUnavailable("qdrant "+op+" failed", err)
	}
	return fmt.Errorf("qdrant %s failed: %w", op, err)
}
