// Package azblob writes exported blobs to Azure Blob storage.
package azblob

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"adda/internal/ports"
)

// BlobStore implements ports.BlobStore. The first segment of a blob name is
// the container, created on first use.
type BlobStore struct {
	client  *azblob.Client
	mu      sync.Mutex
	created map[string]bool
}

var _ ports.BlobStore = (*BlobStore)(nil)

// NewFromConnectionString authenticates with a storage connection string
func NewFromConnectionString(connectionString string) (*BlobStore, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("azblob: invalid connection string: %w", err)
	}
	return &BlobStore{client: client, created: make(map[string]bool)}, nil
}

// NewFromAccountURL authenticates against https://<account>.blob.core.windows.net
// with the default Azure credential chain (managed identity, az login, env)
func NewFromAccountURL(accountURL string) (*BlobStore, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azblob: credential: %w", err)
	}
	client, err := azblob.NewClient(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("azblob: %w", err)
	}
	return &BlobStore{client: client, created: make(map[string]bool)}, nil
}

// Put uploads data, creating the container when it does not exist yet
func (s *BlobStore) Put(ctx context.Context, name string, data []byte) error {
	container, blobName, err := splitName(name)
	if err != nil {
		return err
	}

	if err := s.ensureContainer(ctx, container); err != nil {
		return err
	}

	contentType := "application/json"
	_, err = s.client.UploadBuffer(ctx, container, blobName, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("azblob: upload %s: %w", name, err)
	}
	return nil
}

func (s *BlobStore) ensureContainer(ctx context.Context, container string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.created[container] {
		return nil
	}
	_, err := s.client.CreateContainer(ctx, container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("azblob: create container %s: %w", container, err)
	}
	s.created[container] = true
	return nil
}

// splitName separates "bronze/tasks/tasks_x.json" into "bronze" and "tasks/tasks_x.json"
func splitName(name string) (container, blobName string, err error) {
	container, blobName, ok := strings.Cut(strings.TrimPrefix(name, "/"), "/")
	if !ok || container == "" || blobName == "" {
		return "", "", fmt.Errorf("azblob: blob name %q must be <container>/<path>", name)
	}
	return container, blobName, nil
}
