package wardrobe

import (
	"context"
	"errors"
	"testing"

	"github.com/stylesync/service/internal/storage"
)

// memRepo is an in-memory ItemRepository for tests.
type memRepo struct {
	items map[string]Item
	next  int
}

func newMemRepo() *memRepo {
	return &memRepo{items: map[string]Item{}}
}

func (m *memRepo) Create(_ context.Context, item *Item) (*Item, error) {
	m.next++
	stored := *item
	stored.ID = string(rune('a' + m.next - 1))
	m.items[stored.ID] = stored
	return &stored, nil
}

func (m *memRepo) ListByUser(_ context.Context, uid string, f Filter) ([]Item, error) {
	out := []Item{}
	for _, item := range m.items {
		if item.UserID != uid {
			continue
		}
		if f.Category != "" && item.Category != f.Category {
			continue
		}
		if f.Favorite != nil && item.Favorite != *f.Favorite {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (m *memRepo) GetByID(_ context.Context, uid, id string) (*Item, error) {
	item, ok := m.items[id]
	if !ok || item.UserID != uid {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (m *memRepo) Update(_ context.Context, uid, id string, u ItemUpdate) (*Item, error) {
	item, ok := m.items[id]
	if !ok || item.UserID != uid {
		return nil, ErrNotFound
	}
	if u.Name != nil {
		item.Name = *u.Name
	}
	if u.Favorite != nil {
		item.Favorite = *u.Favorite
	}
	m.items[id] = item
	return &item, nil
}

func (m *memRepo) Delete(_ context.Context, uid, id string) error {
	item, ok := m.items[id]
	if !ok || item.UserID != uid {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// recordingStore implements storage.Storage and records deletes.
type recordingStore struct {
	deletes []string
	err     error
}

func (r *recordingStore) IssueUploadGrant(context.Context, string) (*storage.UploadGrant, error) {
	return &storage.UploadGrant{}, nil
}

func (r *recordingStore) Delete(_ context.Context, key string) error {
	if r.err != nil {
		return r.err
	}
	r.deletes = append(r.deletes, key)
	return nil
}

func TestService_DeleteRemovesBlob(t *testing.T) {
	repo := newMemRepo()
	store := &recordingStore{}
	svc := NewService(repo, store)
	ctx := context.Background()

	item, err := svc.Create(ctx, &Item{
		UserID:   "alice123",
		Name:     "Blue Oxford Shirt",
		Category: "tops",
		BlobName: "alice123/wardrobeImages/item1.png",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, "alice123", item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(store.deletes) != 1 || store.deletes[0] != "alice123/wardrobeImages/item1.png" {
		t.Errorf("blob deletes: got %v", store.deletes)
	}
	if _, err := svc.Get(ctx, "alice123", item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("item should be gone, got %v", err)
	}
}

func TestService_DeleteWithoutBlobSkipsStorage(t *testing.T) {
	repo := newMemRepo()
	store := &recordingStore{}
	svc := NewService(repo, store)
	ctx := context.Background()

	item, err := svc.Create(ctx, &Item{UserID: "alice123", Name: "Scarf", Category: "accessories"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, "alice123", item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.deletes) != 0 {
		t.Errorf("no blob delete expected, got %v", store.deletes)
	}
}

func TestService_DeleteKeepsRowWhenStorageFails(t *testing.T) {
	repo := newMemRepo()
	store := &recordingStore{err: errors.New("storage unavailable")}
	svc := NewService(repo, store)
	ctx := context.Background()

	item, err := svc.Create(ctx, &Item{
		UserID:   "alice123",
		Name:     "Sneakers",
		Category: "shoes",
		BlobName: "alice123/wardrobeImages/item2.png",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, "alice123", item.ID); err == nil {
		t.Fatal("expected an error")
	}
	// The metadata row survives so the delete can be retried.
	if _, err := svc.Get(ctx, "alice123", item.ID); err != nil {
		t.Errorf("item should still exist, got %v", err)
	}
}

func TestService_DeleteForeignItem(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &recordingStore{})
	ctx := context.Background()

	item, err := svc.Create(ctx, &Item{UserID: "alice123", Name: "Jeans", Category: "bottoms"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, "bob456", item.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign item, got %v", err)
	}
}
