package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
)

// GCSProvider implements Provider for Google Cloud Storage.
type GCSProvider struct {
	client *storage.Client
	bucket string
}

// NewGCSProvider initializes a GCS client and verifies the bucket is
// reachable, failing fast on bad configuration. Authentication uses
// Application Default Credentials.
func NewGCSProvider(ctx context.Context, bucket string) (*GCSProvider, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("get GCS bucket %q attributes: %w", bucket, err)
	}
	return &GCSProvider{client: client, bucket: bucket}, nil
}

// Save uploads the artifact and returns a gs:// URI.
func (g *GCSProvider) Save(ctx context.Context, name string, data []byte) (string, error) {
	wc := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("write GCS object %s: %w", name, err)
	}
	// Close finalizes the upload and flushes buffered data.
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("close GCS writer for %s: %w", name, err)
	}
	return fmt.Sprintf("gs://%s/%s", g.bucket, name), nil
}

// Close releases the underlying client.
func (g *GCSProvider) Close() error {
	if err := g.client.Close(); err != nil {
		return fmt.Errorf("close GCS client: %w", err)
	}
	return nil
}
