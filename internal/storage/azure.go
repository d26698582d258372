package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
)

// ErrInvalidConnectionString is returned when the Azure connection string is
// missing required fields. Configuration errors are fatal, not retryable.
var ErrInvalidConnectionString = errors.New("invalid Azure storage connection string")

// AzureStorage issues shared-key SAS upload grants and deletes blobs in a
// single Azure Blob Storage container.
type AzureStorage struct {
	client     *azblob.Client
	credential *azblob.SharedKeyCredential
	container  string
	endpoint   string // e.g. https://account.blob.core.windows.net

	now func() time.Time
}

// azureConnection holds the fields recovered from a connection string.
type azureConnection struct {
	accountName  string
	accountKey   string
	blobEndpoint string
}

// NewAzureStorage parses the connection string and returns a ready-to-use
// AzureStorage. No network calls happen here; a bad account key only
// surfaces when the storage service rejects a signed request.
func NewAzureStorage(connectionString, container string) (*AzureStorage, error) {
	conn, err := parseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}

	credential, err := azblob.NewSharedKeyCredential(conn.accountName, conn.accountKey)
	if err != nil {
		return nil, fmt.Errorf("create shared key credential: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(conn.blobEndpoint, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("create blob client: %w", err)
	}

	return &AzureStorage{
		client:     client,
		credential: credential,
		container:  container,
		endpoint:   strings.TrimRight(conn.blobEndpoint, "/"),
		now:        time.Now,
	}, nil
}

// IssueUploadGrant signs a SAS query string granting exactly create+write on
// the object, HTTPS only, valid from GrantStartSkew in the past until
// GrantValidity from now.
func (s *AzureStorage) IssueUploadGrant(_ context.Context, objectKey string) (*UploadGrant, error) {
	now := s.now().UTC()

	permissions := sas.BlobPermissions{Create: true, Write: true}
	values := sas.BlobSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		StartTime:     now.Add(-GrantStartSkew),
		ExpiryTime:    now.Add(GrantValidity),
		Permissions:   permissions.String(),
		ContainerName: s.container,
		BlobName:      objectKey,
	}

	query, err := values.SignWithSharedKey(s.credential)
	if err != nil {
		return nil, fmt.Errorf("sign sas for %q: %w", objectKey, err)
	}

	blobURL := s.blobURL(objectKey)
	return &UploadGrant{
		SASURL:  blobURL + "?" + query.Encode(),
		BlobURL: blobURL,
	}, nil
}

// Delete removes the blob. An already-absent blob (or container) is success.
func (s *AzureStorage) Delete(ctx context.Context, objectKey string) error {
	_, err := s.client.DeleteBlob(ctx, s.container, objectKey, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil
		}
		return fmt.Errorf("delete blob %q: %w", objectKey, err)
	}
	return nil
}

// blobURL builds the plain (unsigned) object URL.
func (s *AzureStorage) blobURL(objectKey string) string {
	segments := strings.Split(objectKey, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return s.endpoint + "/" + s.container + "/" + strings.Join(segments, "/")
}

// parseConnectionString recovers the account name, key, and blob endpoint
// from a `Key=Value;...` connection string. Splitting on delimiters instead
// of pattern matching keeps field order and extra fields irrelevant.
func parseConnectionString(connectionString string) (azureConnection, error) {
	fields := make(map[string]string)
	for _, pair := range strings.Split(connectionString, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return azureConnection{}, fmt.Errorf("%w: malformed field %q", ErrInvalidConnectionString, pair)
		}
		fields[key] = value
	}

	conn := azureConnection{
		accountName: fields["AccountName"],
		accountKey:  fields["AccountKey"],
	}
	if conn.accountName == "" {
		return azureConnection{}, fmt.Errorf("%w: AccountName is missing", ErrInvalidConnectionString)
	}
	if conn.accountKey == "" {
		return azureConnection{}, fmt.Errorf("%w: AccountKey is missing", ErrInvalidConnectionString)
	}

	if endpoint := fields["BlobEndpoint"]; endpoint != "" {
		conn.blobEndpoint = endpoint
		return conn, nil
	}

	protocol := fields["DefaultEndpointsProtocol"]
	if protocol == "" {
		protocol = "https"
	}
	suffix := fields["EndpointSuffix"]
	if suffix == "" {
		suffix = "core.windows.net"
	}
	conn.blobEndpoint = fmt.Sprintf("%s://%s.blob.%s", protocol, conn.accountName, suffix)
	return conn, nil
}
