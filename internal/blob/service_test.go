package blob

import (
	"context"
	"errors"
	"testing"

	"github.com/stylesync/service/internal/storage"
)

func TestAuthorizeKey(t *testing.T) {
	cases := []struct {
		name string
		uid  string
		key  string
		ok   bool
	}{
		{"own prefix", "alice123", "alice123/wardrobeImages/item1.png", true},
		{"foreign prefix", "alice123", "bob456/wardrobeImages/item1.png", false},
		{"uid as bare key", "alice123", "alice123", false},
		{"uid prefix without separator", "alice123", "alice123x/item.png", false},
		{"empty key", "alice123", "", false},
		{"empty uid", "", "/item.png", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := authorizeKey(tc.uid, tc.key)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrKeyOutsideNamespace) {
				t.Fatalf("expected ErrKeyOutsideNamespace, got %v", err)
			}
		})
	}
}

// rejectingStorage fails the test if any call reaches it.
type rejectingStorage struct{ t *testing.T }

func (r *rejectingStorage) IssueUploadGrant(context.Context, string) (*storage.UploadGrant, error) {
	r.t.Error("storage reached despite failed authorization")
	return nil, nil
}

func (r *rejectingStorage) Delete(context.Context, string) error {
	r.t.Error("storage reached despite failed authorization")
	return nil
}

func TestService_AuthorizesBeforeStorage(t *testing.T) {
	svc := NewService(&rejectingStorage{t: t})
	ctx := context.Background()

	if _, err := svc.IssueUploadGrant(ctx, "alice123", "bob456/item.png"); !errors.Is(err, ErrKeyOutsideNamespace) {
		t.Fatalf("expected ErrKeyOutsideNamespace, got %v", err)
	}
	if err := svc.DeleteObject(ctx, "alice123", "bob456/item.png"); !errors.Is(err, ErrKeyOutsideNamespace) {
		t.Fatalf("expected ErrKeyOutsideNamespace, got %v", err)
	}
}
