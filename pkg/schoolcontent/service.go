package schoolcontent

import (
	"context"
)

// Service defines the main interface for the school-content library
type Service interface {
	// Upload pipeline
	StoreUpload(ctx context.Context, req UploadRequest) (FileRef, error)
	GetStoredFile(ctx context.Context, id int64) (*StoredFile, error)

	// CleanupRef releases whatever backing storage the reference points to.
	// It is best-effort: failures are logged and swallowed so they never
	// block the record mutation that triggered the cleanup.
	CleanupRef(ctx context.Context, ref string)

	// Gallery operations
	UploadGalleryImage(ctx context.Context, req GalleryUploadRequest) (*GalleryImage, error)
	GetGalleryImage(ctx context.Context, id int64) (*GalleryImage, error)
	ListGalleryImages(ctx context.Context, limit, offset int) ([]*GalleryImage, error)
	DeleteGalleryImage(ctx context.Context, id int64) error

	// Content record operations
	CreateRecord(ctx context.Context, req CreateRecordRequest) (*ContentRecord, error)
	GetRecord(ctx context.Context, id int64) (*ContentRecord, error)
	ListRecords(ctx context.Context, kind RecordKind) ([]*ContentRecord, error)
	UpdateRecord(ctx context.Context, req UpdateRecordRequest) (*ContentRecord, error)
	DeleteRecord(ctx context.Context, id int64) error

	// User operations
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	Authenticate(ctx context.Context, username, password string) (*User, error)
}
