package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/schoolsite/school-content/pkg/schoolcontent"
)

// Config options for the in-memory backend. PublicBaseURL and Bucket shape
// the URLs PublicURL reports; tests use them to exercise the remote
// reference path without a network.
type Config struct {
	PublicBaseURL string
	Bucket        string
}

// Backend is an in-memory implementation of the schoolcontent.BlobStore
// interface, used in tests and development.
type Backend struct {
	mu        sync.RWMutex
	objects   map[string][]byte
	mimeTypes map[string]string
	config    Config
}

// New creates a new in-memory storage backend
func New() *Backend {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a new in-memory storage backend with public URL
// configuration.
func NewWithConfig(config Config) *Backend {
	return &Backend{
		objects:   make(map[string][]byte),
		mimeTypes: make(map[string]string),
		config:    config,
	}
}

// Upload uploads content directly
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[objectKey] = data
	if _, exists := b.mimeTypes[objectKey]; !exists {
		b.mimeTypes[objectKey] = "application/octet-stream"
	}
	return nil
}

// UploadWithParams uploads content with parameters. Re-uploading the same
// key overwrites the previous object.
func (b *Backend) UploadWithParams(ctx context.Context, reader io.Reader, params schoolcontent.UploadParams) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[params.ObjectKey] = data
	b.mimeTypes[params.ObjectKey] = params.MimeType
	return nil
}

// Download downloads content directly
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, schoolcontent.ErrObjectNotFound
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete deletes content
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return schoolcontent.ErrObjectNotFound
	}

	delete(b.objects, objectKey)
	delete(b.mimeTypes, objectKey)
	return nil
}

// GetObjectMeta retrieves metadata for an object in memory
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*schoolcontent.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, schoolcontent.ErrObjectNotFound
	}

	return &schoolcontent.ObjectMeta{
		Key:         objectKey,
		Size:        int64(len(data)),
		ContentType: b.mimeTypes[objectKey],
		UpdatedAt:   time.Now(),
		Metadata:    map[string]string{"mime_type": b.mimeTypes[objectKey]},
	}, nil
}

// PublicURL returns the public URL for the given object key.
func (b *Backend) PublicURL(objectKey string) string {
	if b.config.PublicBaseURL != "" && b.config.Bucket != "" {
		return schoolcontent.PublicObjectURL(b.config.PublicBaseURL, b.config.Bucket, objectKey)
	}
	return "memory://" + objectKey
}
