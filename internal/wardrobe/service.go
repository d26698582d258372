package wardrobe

import (
	"context"
	"errors"
	"fmt"

	"github.com/stylesync/service/internal/storage"
)

// ItemRepository is the persistence contract the service needs.
type ItemRepository interface {
	Create(ctx context.Context, item *Item) (*Item, error)
	ListByUser(ctx context.Context, uid string, f Filter) ([]Item, error)
	GetByID(ctx context.Context, uid, id string) (*Item, error)
	Update(ctx context.Context, uid, id string, u ItemUpdate) (*Item, error)
	Delete(ctx context.Context, uid, id string) error
}

// Service contains business logic for wardrobe items.
type Service struct {
	repo  ItemRepository
	store storage.Storage
}

// NewService creates a new wardrobe Service.
func NewService(repo ItemRepository, store storage.Storage) *Service {
	return &Service{repo: repo, store: store}
}

// Create stores metadata for an item whose image was already uploaded via a
// signed URL.
func (s *Service) Create(ctx context.Context, item *Item) (*Item, error) {
	return s.repo.Create(ctx, item)
}

// List returns the user's items, optionally filtered.
func (s *Service) List(ctx context.Context, uid string, f Filter) ([]Item, error) {
	return s.repo.ListByUser(ctx, uid, f)
}

// Get returns one of the user's items.
func (s *Service) Get(ctx context.Context, uid, id string) (*Item, error) {
	return s.repo.GetByID(ctx, uid, id)
}

// Update applies a partial update to one of the user's items.
func (s *Service) Update(ctx context.Context, uid, id string, u ItemUpdate) (*Item, error) {
	return s.repo.Update(ctx, uid, id, u)
}

// Delete removes an item and its stored image. The blob goes first: if the
// store is unreachable the metadata row survives and the delete can be
// retried. An already-absent blob is fine.
func (s *Service) Delete(ctx context.Context, uid, id string) error {
	item, err := s.repo.GetByID(ctx, uid, id)
	if err != nil {
		return err
	}

	if item.BlobName != "" {
		if err := s.store.Delete(ctx, item.BlobName); err != nil {
			return fmt.Errorf("delete item image: %w", err)
		}
	}

	return s.repo.Delete(ctx, uid, id)
}

// IsNotFound returns true when the error indicates a missing item.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
