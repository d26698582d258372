package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// S3Storage implements Storage using a MinIO (or any S3-compatible) backend.
// Upload grants are presigned PUT URLs with the same validity window the
// Azure backend uses.
type S3Storage struct {
	client *minio.Client
	bucket string
}

// NewS3Storage creates a MinIO client, ensures the bucket exists with a
// public-read policy, and returns a ready-to-use S3Storage.
func NewS3Storage(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*S3Storage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx := context.Background()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", bucket, err)
		}
		log.Info().Str("bucket", bucket).Msg("storage: created bucket")
	}

	// Stored images are served directly to the browser by their plain URL.
	if err := client.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
		return nil, fmt.Errorf("set bucket policy: %w", err)
	}

	return &S3Storage{client: client, bucket: bucket}, nil
}

// IssueUploadGrant presigns a PUT URL for the object key.
func (s *S3Storage) IssueUploadGrant(ctx context.Context, objectKey string) (*UploadGrant, error) {
	signed, err := s.client.PresignedPutObject(ctx, s.bucket, objectKey, GrantValidity)
	if err != nil {
		return nil, fmt.Errorf("presign put for %q: %w", objectKey, err)
	}

	plain := *signed
	plain.RawQuery = ""
	return &UploadGrant{
		SASURL:  signed.String(),
		BlobURL: plain.String(),
	}, nil
}

// Delete removes the object at key. S3 deletes are idempotent: removing an
// absent key succeeds.
func (s *S3Storage) Delete(ctx context.Context, objectKey string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", objectKey, err)
	}
	return nil
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
