package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/calculation/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig(endpoint string) *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:        "test-bucket",
		AccessKey:     "test-key",
		SecretKey:     "test-secret",
		Region:        "us-east-1",
		Endpoint:      endpoint,
		UsePathStyle:  true,
		PresignExpiry: 15 * time.Minute,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(&config.StorageConfig{AccessKey: "k", SecretKey: "s"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing access key returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(&config.StorageConfig{Bucket: "b", SecretKey: "s"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key is required")
	})

	t.Run("missing secret key returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(&config.StorageConfig{Bucket: "b", AccessKey: "k"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key is required")
	})

	t.Run("valid config creates storage", func(t *testing.T) {
		s, err := NewS3ObjectStorage(testConfig("http://localhost:9000"))
		require.NoError(t, err)
		assert.Equal(t, "test-bucket", s.Bucket())
		assert.Equal(t, 15*time.Minute, s.presignExpiration)
	})

	t.Run("default presign expiration is 15 minutes", func(t *testing.T) {
		cfg := testConfig("localhost:9000")
		cfg.PresignExpiry = 0
		s, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, s.presignExpiration)
	})

	t.Run("options override configuration", func(t *testing.T) {
		s, err := NewS3ObjectStorage(testConfig(""), WithLogger(zaptest.NewLogger(t)), WithPresignExpiration(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, s.presignExpiration)
	})
}

func TestS3ObjectStorage_DownloadURL(t *testing.T) {
	s, err := NewS3ObjectStorage(testConfig("http://localhost:9000"))
	require.NoError(t, err)

	t.Run("empty key returns error", func(t *testing.T) {
		url, _, err := s.DownloadURL(context.Background(), "", time.Minute)
		assert.ErrorIs(t, err, ErrKeyRequired)
		assert.Empty(t, url)
	})

	t.Run("generates a presigned URL", func(t *testing.T) {
		url, expiresAt, err := s.DownloadURL(context.Background(), "archive/calculation-1.pdf", time.Hour)
		require.NoError(t, err)
		assert.Contains(t, url, "localhost:9000")
		assert.Contains(t, url, "test-bucket")
		assert.Contains(t, url, "X-Amz-Signature")
		assert.True(t, expiresAt.After(time.Now().Add(59*time.Minute)))
	})

	t.Run("uses the default expiration", func(t *testing.T) {
		_, expiresAt, err := s.DownloadURL(context.Background(), "a.pdf", 0)
		require.NoError(t, err)
		assert.True(t, expiresAt.Before(time.Now().Add(16*time.Minute)))
	})
}

func TestS3ObjectStorage_EmptyKey(t *testing.T) {
	s, err := NewS3ObjectStorage(testConfig("http://localhost:9000"))
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, s.Put(ctx, "", "text/plain", nil), ErrKeyRequired)
	assert.ErrorIs(t, s.Delete(ctx, ""), ErrKeyRequired)
	exists, err := s.Exists(ctx, "")
	assert.ErrorIs(t, err, ErrKeyRequired)
	assert.False(t, exists)
}

// fakeS3 answers path-style object requests from a map
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.TrimPrefix(r.URL.Path, "/test-bucket/")
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = string(body)
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if _, ok := f.objects[key]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3ObjectStorage_RoundTrip(t *testing.T) {
	fake := &fakeS3{objects: make(map[string]string)}
	server := httptest.NewServer(fake)
	defer server.Close()

	s, err := NewS3ObjectStorage(testConfig(server.URL))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "users/1.jpg", "image/jpeg", []byte("jpeg")))
	fake.mu.Lock()
	assert.Contains(t, fake.objects["users/1.jpg"], "jpeg")
	fake.mu.Unlock()

	exists, err := s.Exists(ctx, "users/1.jpg")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.Delete(ctx, "users/1.jpg"))
	exists, err = s.Exists(ctx, "users/1.jpg")
	require.NoError(t, err)
	assert.False(t, exists)
}
