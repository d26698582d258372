package planner

import (
	"context"
	"errors"
)

// OutfitRepository is the persistence contract the service needs.
type OutfitRepository interface {
	UpsertOutfit(ctx context.Context, o *Outfit) (*Outfit, error)
	GetOutfitByDate(ctx context.Context, uid, date string) (*Outfit, error)
	ListOutfits(ctx context.Context, uid string) ([]Outfit, error)
	DeleteOutfit(ctx context.Context, uid, id string) error
	CreateFavorite(ctx context.Context, f *Favorite) (*Favorite, error)
	ListFavorites(ctx context.Context, uid string) ([]Favorite, error)
	DeleteFavorite(ctx context.Context, uid, id string) error
}

// Service contains business logic for outfit planning.
type Service struct {
	repo OutfitRepository
}

// NewService creates a new planner Service.
func NewService(repo OutfitRepository) *Service {
	return &Service{repo: repo}
}

// Plan saves the outfit for its date, replacing an existing plan for that day.
func (s *Service) Plan(ctx context.Context, o *Outfit) (*Outfit, error) {
	return s.repo.UpsertOutfit(ctx, o)
}

// GetByDate returns the user's outfit for one date.
func (s *Service) GetByDate(ctx context.Context, uid, date string) (*Outfit, error) {
	return s.repo.GetOutfitByDate(ctx, uid, date)
}

// History returns all of the user's planned outfits.
func (s *Service) History(ctx context.Context, uid string) ([]Outfit, error) {
	return s.repo.ListOutfits(ctx, uid)
}

// DeletePlan removes one planned outfit.
func (s *Service) DeletePlan(ctx context.Context, uid, id string) error {
	return s.repo.DeleteOutfit(ctx, uid, id)
}

// AddFavorite saves an outfit combination.
func (s *Service) AddFavorite(ctx context.Context, f *Favorite) (*Favorite, error) {
	return s.repo.CreateFavorite(ctx, f)
}

// Favorites returns the user's saved combinations.
func (s *Service) Favorites(ctx context.Context, uid string) ([]Favorite, error) {
	return s.repo.ListFavorites(ctx, uid)
}

// RemoveFavorite deletes one saved combination.
func (s *Service) RemoveFavorite(ctx context.Context, uid, id string) error {
	return s.repo.DeleteFavorite(ctx, uid, id)
}

// IsNotFound returns true when the error indicates a missing record.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
