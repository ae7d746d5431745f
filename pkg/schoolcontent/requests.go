package schoolcontent

import (
	"time"

	"github.com/schoolsite/school-content/pkg/schoolcontent/transform"
)

// Request DTOs

// UploadRequest carries one uploaded file through the transform and storage
// resolution pipeline. Crop is nil when the form supplied no crop intent.
type UploadRequest struct {
	Data     []byte
	Filename string
	Crop     *transform.CropIntent
}

// GalleryUploadRequest contains parameters for a gallery image upload.
// Gallery images are always persisted as database rows.
type GalleryUploadRequest struct {
	Data     []byte
	Filename string
	Title    string
	Caption  string
}

// CreateRecordRequest contains parameters for creating a content record.
// Upload, when present, is resolved to a file reference before the record is
// persisted.
type CreateRecordRequest struct {
	Kind      RecordKind
	Title     string
	Body      string
	Location  string
	Position  string
	EventDate *time.Time
	SortOrder int
	Upload    *UploadRequest
}

// UpdateRecordRequest contains parameters for updating a content record.
// A new Upload replaces the record's file (the old reference is cleaned up
// first); RemoveFile clears it without a replacement.
type UpdateRecordRequest struct {
	ID         int64
	Title      string
	Body       string
	Location   string
	Position   string
	EventDate  *time.Time
	SortOrder  int
	Upload     *UploadRequest
	RemoveFile bool
}

// CreateUserRequest contains parameters for creating an admin panel account.
type CreateUserRequest struct {
	Username string
	Email    string
	Password string
	IsAdmin  bool
}
