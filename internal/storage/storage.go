// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup:
// AzureStorage signs shared-key SAS grants, S3Storage presigns PUT URLs and
// works with any S3-compatible provider (MinIO, AWS S3).
package storage

import (
	"context"
	"time"
)

// GrantValidity is how long an upload grant stays usable.
const GrantValidity = 15 * time.Minute

// GrantStartSkew backdates the grant's start time to absorb clock skew
// between this server and the storage provider's signature validation.
const GrantStartSkew = 5 * time.Minute

// UploadGrant is a short-lived capability authorizing one direct client
// upload. It is never persisted; it exists only in the response payload.
type UploadGrant struct {
	// SASURL is the object URL with the signed query string appended.
	SASURL string
	// BlobURL is the plain object URL, kept by the client in item metadata.
	BlobURL string
}

// Storage is the interface for issuing upload grants and deleting objects.
type Storage interface {
	// IssueUploadGrant computes a time-boxed signed upload URL for the given
	// object key. Pure computation for the Azure backend; no state is stored.
	IssueUploadGrant(ctx context.Context, objectKey string) (*UploadGrant, error)
	// Delete removes an object identified by key. Deleting an object that
	// does not exist is success, not an error.
	Delete(ctx context.Context, objectKey string) error
}
