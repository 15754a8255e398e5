package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockObjectFetcher is a mock implementation of ObjectFetcher for testing
type MockObjectFetcher struct {
	FetchFunc func(ctx context.Context, bucket, object string) ([]byte, error)
}

func (m *MockObjectFetcher) Fetch(ctx context.Context, bucket, object string) ([]byte, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, bucket, object)
	}
	return nil, errors.New("not implemented")
}

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{uri: "gs://statements/2024/march.pdf", wantBucket: "statements", wantObject: "2024/march.pdf"},
		{uri: "gs://b/o", wantBucket: "b", wantObject: "o"},
		{uri: "gs://bucket-only", wantErr: true},
		{uri: "gs://bucket/", wantErr: true},
		{uri: "s3://bucket/key", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := ParseGCSURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantObject, object)
		})
	}
}

func TestLoaderLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.txt")
	require.NoError(t, os.WriteFile(path, []byte("2024-01-15 COFFEE SHOP -4.50\n"), 0o600))

	doc, err := NewLoader(nil, nil, "").Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "statement.txt", doc.Name)
	assert.Equal(t, "2024-01-15 COFFEE SHOP -4.50\n", doc.Text)
	assert.False(t, doc.IsPDF)
}

func TestLoaderStdin(t *testing.T) {
	loader := NewLoader(nil, strings.NewReader("TOTAL 12.00"), "")

	doc, err := loader.Load(context.Background(), Stdin)
	require.NoError(t, err)
	assert.Equal(t, "stdin", doc.Name)
	assert.Equal(t, "TOTAL 12.00", doc.Text)
}

func TestLoaderGCSURI(t *testing.T) {
	var gotBucket, gotObject string
	fetcher := &MockObjectFetcher{
		FetchFunc: func(ctx context.Context, bucket, object string) ([]byte, error) {
			gotBucket, gotObject = bucket, object
			return []byte("receipt text"), nil
		},
	}

	doc, err := NewLoader(fetcher, nil, "").Load(context.Background(), "gs://docs/receipts/r1.txt")
	require.NoError(t, err)
	assert.Equal(t, "docs", gotBucket)
	assert.Equal(t, "receipts/r1.txt", gotObject)
	assert.Equal(t, "r1.txt", doc.Name)
	assert.Equal(t, "receipt text", doc.Text)
}

func TestLoaderBareObjectUsesDefaultBucket(t *testing.T) {
	fetcher := &MockObjectFetcher{
		FetchFunc: func(ctx context.Context, bucket, object string) ([]byte, error) {
			assert.Equal(t, "default-bucket", bucket)
			return []byte("text"), nil
		},
	}

	doc, err := NewLoader(fetcher, nil, "default-bucket").Load(context.Background(), "no/such/local/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "file.txt", doc.Name)
}

func TestLoaderErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty reference", func(t *testing.T) {
		_, err := NewLoader(nil, nil, "").Load(ctx, "  ")
		assert.Error(t, err)
	})

	t.Run("gs without fetcher", func(t *testing.T) {
		_, err := NewLoader(nil, nil, "").Load(ctx, "gs://b/o.txt")
		assert.ErrorIs(t, err, ErrNoFetcher)
	})

	t.Run("missing local file without bucket", func(t *testing.T) {
		_, err := NewLoader(nil, nil, "").Load(ctx, filepath.Join(t.TempDir(), "missing.txt"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("fetch failure", func(t *testing.T) {
		boom := errors.New("permission denied")
		fetcher := &MockObjectFetcher{
			FetchFunc: func(ctx context.Context, bucket, object string) ([]byte, error) {
				return nil, boom
			},
		}
		_, err := NewLoader(fetcher, nil, "").Load(ctx, "gs://b/o.txt")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("corrupt pdf", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.pdf")
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\nnot really a pdf"), 0o600))

		_, err := NewLoader(nil, nil, "").Load(ctx, path)
		assert.ErrorContains(t, err, "extract text from broken.pdf")
	})
}

func TestCheckRemoteRef(t *testing.T) {
	tests := []struct {
		ref     string
		wantErr bool
	}{
		{ref: "gs://docs/jan.pdf"},
		{ref: "statements/2024/jan.txt"},
		{ref: "jan.txt"},
		{ref: "-", wantErr: true},
		{ref: "/etc/passwd", wantErr: true},
		{ref: "~/statement.txt", wantErr: true},
		{ref: "../secrets.txt", wantErr: true},
		{ref: "statements/../../secrets.txt", wantErr: true},
		{ref: "./jan.txt", wantErr: true},
		{ref: `C:\statements\jan.txt`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			err := CheckRemoteRef(tt.ref)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrLocalRef)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRemoteOnlyLoader(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "payroll.txt")
	require.NoError(t, os.WriteFile(path, []byte("2024-01-15 PAYROLL 9999.99\n"), 0o600))

	var fetched []string
	fetcher := &MockObjectFetcher{
		FetchFunc: func(ctx context.Context, bucket, object string) ([]byte, error) {
			fetched = append(fetched, bucket+"/"+object)
			return []byte("remote text"), nil
		},
	}
	base := NewLoader(fetcher, strings.NewReader("stdin text"), "default-bucket")
	loader := base.RemoteOnly()

	t.Run("local file rejected", func(t *testing.T) {
		_, err := loader.Load(ctx, path)
		assert.ErrorIs(t, err, ErrLocalRef)
	})

	t.Run("stdin rejected", func(t *testing.T) {
		_, err := loader.Load(ctx, Stdin)
		assert.ErrorIs(t, err, ErrLocalRef)
	})

	t.Run("bucket refs fetched", func(t *testing.T) {
		doc, err := loader.Load(ctx, "gs://docs/jan.txt")
		require.NoError(t, err)
		assert.Equal(t, "remote text", doc.Text)

		_, err = loader.Load(ctx, "statements/feb.txt")
		require.NoError(t, err)
		assert.Equal(t, []string{"docs/jan.txt", "default-bucket/statements/feb.txt"}, fetched)
	})

	t.Run("bare name without bucket", func(t *testing.T) {
		_, err := NewLoader(fetcher, nil, "").RemoteOnly().Load(ctx, "feb.txt")
		assert.ErrorContains(t, err, "no default bucket")
	})

	t.Run("original loader unchanged", func(t *testing.T) {
		doc, err := base.Load(ctx, path)
		require.NoError(t, err)
		assert.Contains(t, doc.Text, "PAYROLL")
	})
}

func TestGCSFetcherCloseWithoutUse(t *testing.T) {
	assert.NoError(t, NewGCSFetcher().Close())
}
