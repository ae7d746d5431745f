package schoolcontent

import (
	"context"
	"io"
	"time"
)

// BlobStore defines the interface for object storage backends
type BlobStore interface {
	// Upload uploads content under the given object key
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// UploadWithParams uploads content with additional parameters
	UploadWithParams(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download downloads content directly
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete deletes content
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves metadata for an object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)

	// PublicURL returns the public URL serving the given object key
	PublicURL(objectKey string) string
}

// UploadParams contains parameters for uploading an object. Uploads with the
// same object key overwrite the previous object (upsert semantics), which
// keeps retries idempotent.
type UploadParams struct {
	ObjectKey string
	MimeType  string
}

// ObjectMeta contains metadata about an object in storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
	Metadata    map[string]string
}

// Repository defines the interface for database persistence
type Repository interface {
	// Stored file (blob) operations
	CreateStoredFile(ctx context.Context, f *StoredFile) error
	GetStoredFile(ctx context.Context, id int64) (*StoredFile, error)
	DeleteStoredFile(ctx context.Context, id int64) error

	// Gallery image operations
	CreateGalleryImage(ctx context.Context, img *GalleryImage) error
	GetGalleryImage(ctx context.Context, id int64) (*GalleryImage, error)
	ListGalleryImages(ctx context.Context, limit, offset int) ([]*GalleryImage, error)
	DeleteGalleryImage(ctx context.Context, id int64) error

	// Content record operations
	CreateRecord(ctx context.Context, rec *ContentRecord) error
	GetRecord(ctx context.Context, id int64) (*ContentRecord, error)
	UpdateRecord(ctx context.Context, rec *ContentRecord) error
	DeleteRecord(ctx context.Context, id int64) error
	ListRecords(ctx context.Context, kind RecordKind) ([]*ContentRecord, error)

	// User operations
	CreateUser(ctx context.Context, u *User) error
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// URLVerifier checks that a just-uploaded object's public URL actually
// serves content before the URL is trusted as a persisted reference.
type URLVerifier interface {
	Verify(ctx context.Context, url string) error
}
