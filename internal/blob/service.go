// Package blob implements the signed-upload/delete proxy: authenticated
// callers obtain short-lived SAS upload URLs and delete blobs they own.
package blob

import (
	"context"
	"errors"
	"strings"

	"github.com/stylesync/service/internal/storage"
)

// ErrKeyOutsideNamespace is returned when an object key is not under the
// caller's own subject-id prefix.
var ErrKeyOutsideNamespace = errors.New("object key outside caller namespace")

// Service enforces the key-namespace rule and delegates to object storage.
type Service struct {
	store storage.Storage
}

// NewService creates a new blob Service.
func NewService(store storage.Storage) *Service {
	return &Service{store: store}
}

// IssueUploadGrant authorizes the key and mints an upload grant for it.
func (s *Service) IssueUploadGrant(ctx context.Context, uid, objectKey string) (*storage.UploadGrant, error) {
	if err := authorizeKey(uid, objectKey); err != nil {
		return nil, err
	}
	return s.store.IssueUploadGrant(ctx, objectKey)
}

// DeleteObject authorizes the key and deletes the blob. Deleting an absent
// blob is success.
func (s *Service) DeleteObject(ctx context.Context, uid, objectKey string) error {
	if err := authorizeKey(uid, objectKey); err != nil {
		return err
	}
	return s.store.Delete(ctx, objectKey)
}

// authorizeKey is the integrity boundary of the whole API: a caller may only
// mint upload grants or deletions for keys under its own `{uid}/` prefix.
func authorizeKey(uid, objectKey string) error {
	if uid == "" || !strings.HasPrefix(objectKey, uid+"/") {
		return ErrKeyOutsideNamespace
	}
	return nil
}
