package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/holps-7/striko/pkg/model"
)

// CollectionStore keeps collections in <baseDir>/collections.
type CollectionStore struct {
	records *recordStore[model.Collection]
}

// NewCollectionStore opens the collection store under baseDir. The directory
// is created lazily on the first save.
func NewCollectionStore(baseDir string, logger *slog.Logger) *CollectionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectionStore{records: &recordStore[model.Collection]{
		dir:    CollectionsDir(baseDir),
		kind:   "collection",
		schema: collectionSchema,
		id:     func(c model.Collection) string { return c.ID },
		name:   func(c model.Collection) string { return c.Name },
		logger: logger,
	}}
}

// Save writes the whole collection, replacing any previous version.
func (s *CollectionStore) Save(ctx context.Context, c model.Collection) error {
	if c.Requests == nil {
		c.Requests = []model.Request{}
	}
	return s.records.save(ctx, c)
}

// Get loads a collection by id.
func (s *CollectionStore) Get(ctx context.Context, id string) (model.Collection, bool, error) {
	return s.records.get(ctx, id)
}

// List returns all readable collections sorted by name.
func (s *CollectionStore) List(ctx context.Context) ([]model.Collection, error) {
	return s.records.list(ctx)
}

// Create saves a new collection with a fresh id.
func (s *CollectionStore) Create(ctx context.Context, name string, reqs ...model.Request) (model.Collection, error) {
	c := model.Collection{
		ID:       uuid.NewString(),
		Name:     name,
		Requests: make([]model.Request, 0, len(reqs)),
	}
	for _, r := range reqs {
		c.Requests = append(c.Requests, r.Clone())
	}
	if err := s.Save(ctx, c); err != nil {
		return model.Collection{}, err
	}
	return c, nil
}

// AddRequest replaces the top-level request with the same id in the
// collection, or appends it, and saves the collection. It returns the updated
// collection and the request that was replaced, if any.
func (s *CollectionStore) AddRequest(ctx context.Context, collectionID string, req model.Request) (model.Collection, *model.Request, error) {
	c, found, err := s.Get(ctx, collectionID)
	if err != nil {
		return model.Collection{}, nil, err
	}
	if !found {
		return model.Collection{}, nil, fmt.Errorf("collection %s: %w", collectionID, ErrNotFound)
	}

	replaced := c.Upsert(req.Clone())
	if err := s.Save(ctx, c); err != nil {
		return model.Collection{}, nil, err
	}
	return c, replaced, nil
}
