// Package wardrobe manages clothing item metadata and its persistence.
package wardrobe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Item represents one clothing item in a user's wardrobe.
type Item struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Color     string    `json:"color,omitempty"`
	Tags      []string  `json:"tags"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	BlobName  string    `json:"blobName,omitempty"`
	Favorite  bool      `json:"favorite"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ItemUpdate carries the partial-update fields; nil pointers leave the
// stored value unchanged.
type ItemUpdate struct {
	Name     *string   `json:"name"`
	Category *string   `json:"category"`
	Color    *string   `json:"color"`
	Tags     *[]string `json:"tags"`
	Favorite *bool     `json:"favorite"`
}

// Filter narrows a wardrobe listing.
type Filter struct {
	Category string
	Favorite *bool
}

// ErrNotFound is returned when an item does not exist or belongs to another user.
var ErrNotFound = errors.New("wardrobe item not found")

const itemColumns = `id, user_id, name, category, color, tags, image_url, blob_name, favorite, created_at, updated_at`

// Repository handles all wardrobe database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new item and returns the created record.
func (r *Repository) Create(ctx context.Context, item *Item) (*Item, error) {
	out := &Item{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO wardrobe_items (id, user_id, name, category, color, tags, image_url, blob_name, favorite)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+itemColumns,
		uuid.NewString(), item.UserID, item.Name, item.Category, item.Color,
		item.Tags, item.ImageURL, item.BlobName, item.Favorite,
	).Scan(scanTargets(out)...)
	if err != nil {
		return nil, fmt.Errorf("create wardrobe item: %w", err)
	}
	return out, nil
}

// ListByUser returns the user's items, newest first, optionally filtered.
func (r *Repository) ListByUser(ctx context.Context, uid string, f Filter) ([]Item, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+itemColumns+`
		 FROM wardrobe_items
		 WHERE user_id = $1
		   AND ($2 = '' OR category = $2)
		   AND ($3::boolean IS NULL OR favorite = $3)
		 ORDER BY created_at DESC`,
		uid, f.Category, f.Favorite,
	)
	if err != nil {
		return nil, fmt.Errorf("list wardrobe items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var item Item
		if err := rows.Scan(scanTargets(&item)...); err != nil {
			return nil, fmt.Errorf("scan wardrobe item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetByID fetches one of the user's items.
func (r *Repository) GetByID(ctx context.Context, uid, id string) (*Item, error) {
	item := &Item{}
	err := r.db.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM wardrobe_items WHERE id = $1 AND user_id = $2`,
		id, uid,
	).Scan(scanTargets(item)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get wardrobe item: %w", err)
	}
	return item, nil
}

// Update applies a partial update and returns the new record.
func (r *Repository) Update(ctx context.Context, uid, id string, u ItemUpdate) (*Item, error) {
	var tags interface{}
	if u.Tags != nil {
		tags = *u.Tags
	}

	item := &Item{}
	err := r.db.QueryRow(ctx,
		`UPDATE wardrobe_items
		 SET name       = COALESCE($3, name),
		     category   = COALESCE($4, category),
		     color      = COALESCE($5, color),
		     tags       = COALESCE($6::text[], tags),
		     favorite   = COALESCE($7, favorite),
		     updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+itemColumns,
		id, uid, u.Name, u.Category, u.Color, tags, u.Favorite,
	).Scan(scanTargets(item)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update wardrobe item: %w", err)
	}
	return item, nil
}

// Delete removes one of the user's items.
func (r *Repository) Delete(ctx context.Context, uid, id string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM wardrobe_items WHERE id = $1 AND user_id = $2`,
		id, uid,
	)
	if err != nil {
		return fmt.Errorf("delete wardrobe item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanTargets keeps column order in one place for every Scan call.
func scanTargets(item *Item) []interface{} {
	return []interface{}{
		&item.ID, &item.UserID, &item.Name, &item.Category, &item.Color,
		&item.Tags, &item.ImageURL, &item.BlobName, &item.Favorite,
		&item.CreatedAt, &item.UpdatedAt,
	}
}
