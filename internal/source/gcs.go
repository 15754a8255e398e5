package source

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
)

// ObjectFetcher reads an object's bytes from a bucket.
type ObjectFetcher interface {
	Fetch(ctx context.Context, bucket, object string) ([]byte, error)
}

// GCSFetcher reads objects from Google Cloud Storage using Application Default
// Credentials. The client is created on first use so local-only runs never
// need credentials.
type GCSFetcher struct {
	mu     sync.Mutex
	client *storage.Client
}

// NewGCSFetcher returns a fetcher. Call Close when done.
func NewGCSFetcher() *GCSFetcher {
	return &GCSFetcher{}
}

func (f *GCSFetcher) storageClient(ctx context.Context) (*storage.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.client == nil {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		f.client = client
	}
	return f.client, nil
}

// Fetch downloads the whole object.
func (f *GCSFetcher) Fetch(ctx context.Context, bucket, object string) ([]byte, error) {
	client, err := f.storageClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w", err)
	}

	rc, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading bytes: %w", err)
	}
	return data, nil
}

// Close releases the storage client if one was created.
func (f *GCSFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.client == nil {
		return nil
	}
	err := f.client.Close()
	f.client = nil
	return err
}

// ParseGCSURI splits gs://bucket/path/to/object into bucket and object.
func ParseGCSURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// objectBase returns the file name part of an object path.
// e.g., "statements/2024/march.pdf" → "march.pdf"
func objectBase(object string) string {
	return path.Base(object)
}
