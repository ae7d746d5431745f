// Package fs provides a filesystem BlobStore. The server uses it for the
// legacy local uploads folder: pre-migration installations stored files on
// disk and kept a bare filename on the record, and those files still need to
// be served and removed.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schoolsite/school-content/pkg/schoolcontent"
)

// Config options for the filesystem backend
type Config struct {
	BaseDir   string // Base directory for storing files
	URLPrefix string // Optional URL prefix reported by PublicURL
}

// Backend is a filesystem implementation of the schoolcontent.BlobStore
// interface.
type Backend struct {
	baseDir   string
	urlPrefix string
}

// New creates a new filesystem storage backend, creating the base directory
// when it does not exist.
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(config.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Backend{baseDir: config.BaseDir, urlPrefix: config.URLPrefix}, nil
}

// objectPath resolves an object key inside the base directory, rejecting
// keys that would escape it.
func (b *Backend) objectPath(objectKey string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(objectKey))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid object key %q", objectKey)
	}
	return filepath.Join(b.baseDir, cleaned), nil
}

// Upload writes content to a file under the base directory
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	filePath, err := b.objectPath(objectKey)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// UploadWithParams uploads content; the filesystem keeps no content type, so
// the extra parameters only select the object key.
func (b *Backend) UploadWithParams(ctx context.Context, reader io.Reader, params schoolcontent.UploadParams) error {
	return b.Upload(ctx, params.ObjectKey, reader)
}

// Download opens the file for the given object key
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	filePath, err := b.objectPath(objectKey)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, schoolcontent.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Delete removes the file for the given object key
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	filePath, err := b.objectPath(objectKey)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return schoolcontent.ErrObjectNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GetObjectMeta retrieves metadata for an object on the filesystem
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*schoolcontent.ObjectMeta, error) {
	filePath, err := b.objectPath(objectKey)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, schoolcontent.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	return &schoolcontent.ObjectMeta{
		Key:       objectKey,
		Size:      info.Size(),
		UpdatedAt: info.ModTime().In(time.UTC),
		Metadata:  map[string]string{},
	}, nil
}

// PublicURL returns the configured URL prefix joined with the object key, or
// an empty string when no prefix is configured.
func (b *Backend) PublicURL(objectKey string) string {
	if b.urlPrefix == "" {
		return ""
	}
	return strings.TrimSuffix(b.urlPrefix, "/") + "/" + objectKey
}
