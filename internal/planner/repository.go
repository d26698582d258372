// Package planner manages planned daily outfits and favorite outfit combinations.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dateLayout = "2006-01-02"

// Outfit is the set of wardrobe items planned for one calendar date.
// At most one outfit exists per (user, date); saving again replaces it.
type Outfit struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Date        string    `json:"date" example:"2026-08-31"`
	TopID       string    `json:"topId,omitempty"`
	BottomID    string    `json:"bottomId,omitempty"`
	ShoeID      string    `json:"shoeId,omitempty"`
	AccessoryID string    `json:"accessoryId,omitempty"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Favorite is a saved outfit combination, independent of any date.
type Favorite struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	TopID       string    `json:"topId,omitempty"`
	BottomID    string    `json:"bottomId,omitempty"`
	ShoeID      string    `json:"shoeId,omitempty"`
	AccessoryID string    `json:"accessoryId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ErrNotFound is returned when an outfit or favorite does not exist or
// belongs to another user.
var ErrNotFound = errors.New("outfit not found")

// Repository handles all planner database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const outfitColumns = `id, user_id, outfit_date, top_id, bottom_id, shoe_id, accessory_id, note, created_at, updated_at`

// UpsertOutfit stores the outfit for (user, date), replacing any existing one.
func (r *Repository) UpsertOutfit(ctx context.Context, o *Outfit) (*Outfit, error) {
	out := &Outfit{}
	var date time.Time
	err := r.db.QueryRow(ctx,
		`INSERT INTO planned_outfits (id, user_id, outfit_date, top_id, bottom_id, shoe_id, accessory_id, note)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id, outfit_date) DO UPDATE
		 SET top_id       = EXCLUDED.top_id,
		     bottom_id    = EXCLUDED.bottom_id,
		     shoe_id      = EXCLUDED.shoe_id,
		     accessory_id = EXCLUDED.accessory_id,
		     note         = EXCLUDED.note,
		     updated_at   = now()
		 RETURNING `+outfitColumns,
		uuid.NewString(), o.UserID, o.Date, o.TopID, o.BottomID, o.ShoeID, o.AccessoryID, o.Note,
	).Scan(&out.ID, &out.UserID, &date, &out.TopID, &out.BottomID, &out.ShoeID,
		&out.AccessoryID, &out.Note, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert planned outfit: %w", err)
	}
	out.Date = date.Format(dateLayout)
	return out, nil
}

// GetOutfitByDate fetches the user's outfit for one date.
func (r *Repository) GetOutfitByDate(ctx context.Context, uid, date string) (*Outfit, error) {
	out := &Outfit{}
	var d time.Time
	err := r.db.QueryRow(ctx,
		`SELECT `+outfitColumns+` FROM planned_outfits WHERE user_id = $1 AND outfit_date = $2`,
		uid, date,
	).Scan(&out.ID, &out.UserID, &d, &out.TopID, &out.BottomID, &out.ShoeID,
		&out.AccessoryID, &out.Note, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get planned outfit: %w", err)
	}
	out.Date = d.Format(dateLayout)
	return out, nil
}

// ListOutfits returns all of the user's planned outfits, newest date first.
func (r *Repository) ListOutfits(ctx context.Context, uid string) ([]Outfit, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+outfitColumns+` FROM planned_outfits WHERE user_id = $1 ORDER BY outfit_date DESC`,
		uid,
	)
	if err != nil {
		return nil, fmt.Errorf("list planned outfits: %w", err)
	}
	defer rows.Close()

	outfits := []Outfit{}
	for rows.Next() {
		var o Outfit
		var d time.Time
		if err := rows.Scan(&o.ID, &o.UserID, &d, &o.TopID, &o.BottomID, &o.ShoeID,
			&o.AccessoryID, &o.Note, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan planned outfit: %w", err)
		}
		o.Date = d.Format(dateLayout)
		outfits = append(outfits, o)
	}
	return outfits, rows.Err()
}

// DeleteOutfit removes one of the user's planned outfits.
func (r *Repository) DeleteOutfit(ctx context.Context, uid, id string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM planned_outfits WHERE id = $1 AND user_id = $2`,
		id, uid,
	)
	if err != nil {
		return fmt.Errorf("delete planned outfit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateFavorite saves an outfit combination to the user's favorites.
func (r *Repository) CreateFavorite(ctx context.Context, f *Favorite) (*Favorite, error) {
	out := &Favorite{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO favorite_outfits (id, user_id, top_id, bottom_id, shoe_id, accessory_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, user_id, top_id, bottom_id, shoe_id, accessory_id, created_at`,
		uuid.NewString(), f.UserID, f.TopID, f.BottomID, f.ShoeID, f.AccessoryID,
	).Scan(&out.ID, &out.UserID, &out.TopID, &out.BottomID, &out.ShoeID, &out.AccessoryID, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create favorite outfit: %w", err)
	}
	return out, nil
}

// ListFavorites returns the user's favorite combinations, newest first.
func (r *Repository) ListFavorites(ctx context.Context, uid string) ([]Favorite, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, top_id, bottom_id, shoe_id, accessory_id, created_at
		 FROM favorite_outfits WHERE user_id = $1 ORDER BY created_at DESC`,
		uid,
	)
	if err != nil {
		return nil, fmt.Errorf("list favorite outfits: %w", err)
	}
	defer rows.Close()

	favorites := []Favorite{}
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.TopID, &f.BottomID, &f.ShoeID, &f.AccessoryID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan favorite outfit: %w", err)
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

// DeleteFavorite removes one of the user's favorite combinations.
func (r *Repository) DeleteFavorite(ctx context.Context, uid, id string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM favorite_outfits WHERE id = $1 AND user_id = $2`,
		id, uid,
	)
	if err != nil {
		return fmt.Errorf("delete favorite outfit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
