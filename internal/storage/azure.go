package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/sirupsen/logrus"
)

// BlobArchive retains mention batches as JSON blobs in Azure Blob Storage.
// The archive is write-only from the pipeline's point of view; the local
// store remains the queryable system of record.
type BlobArchive struct {
	client        *azblob.Client
	containerName string
}

// Ensure BlobArchive implements Archiver
var _ Archiver = (*BlobArchive)(nil)

// NewBlobArchive creates an archive client using managed identity.
func NewBlobArchive(accountName, containerName string) (*BlobArchive, error) {
	if accountName == "" {
		return nil, fmt.Errorf("storage account name is required")
	}

	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)
	client, err := azblob.NewClient(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure blob client: %w", err)
	}

	archive := &BlobArchive{
		client:        client,
		containerName: containerName,
	}

	if err := archive.ensureContainer(); err != nil {
		return nil, fmt.Errorf("failed to ensure container exists: %w", err)
	}

	return archive, nil
}

func (a *BlobArchive) ensureContainer() error {
	ctx := context.Background()

	_, err := a.client.CreateContainer(ctx, a.containerName, nil)
	if err != nil {
		if !strings.Contains(err.Error(), "ContainerAlreadyExists") {
			return fmt.Errorf("failed to create container: %w", err)
		}
		logrus.Debugf("Container %s already exists", a.containerName)
	} else {
		logrus.Infof("Created container %s", a.containerName)
	}

	return nil
}

// Store uploads data under the given blob name.
func (a *BlobArchive) Store(ctx context.Context, name string, data []byte) error {
	_, err := a.client.UploadBuffer(ctx, a.containerName, name, data, &azblob.UploadBufferOptions{
		BlockSize:   int64(1024 * 1024),
		Concurrency: 3,
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob %s: %w", name, err)
	}

	logrus.Debugf("Archived %s to Azure Blob Storage", name)
	return nil
}
