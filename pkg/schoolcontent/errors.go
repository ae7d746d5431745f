package schoolcontent

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrStoredFileNotFound indicates a stored file row was not found
	ErrStoredFileNotFound = errors.New("stored file not found")

	// ErrGalleryImageNotFound indicates a gallery image was not found
	ErrGalleryImageNotFound = errors.New("gallery image not found")

	// ErrRecordNotFound indicates a content record was not found
	ErrRecordNotFound = errors.New("content record not found")

	// ErrUserNotFound indicates a user was not found
	ErrUserNotFound = errors.New("user not found")

	// ErrObjectNotFound indicates an object was not found in a blob store
	ErrObjectNotFound = errors.New("object not found")

	// ErrInvalidRecordKind indicates an unknown content record kind
	ErrInvalidRecordKind = errors.New("invalid record kind")

	// ErrInvalidCredentials indicates a failed login attempt
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmptyUpload indicates an upload with no bytes
	ErrEmptyUpload = errors.New("empty upload")
)

// RecordError represents an error related to content record operations
type RecordError struct {
	RecordID int64
	Kind     RecordKind
	Op       string
	Err      error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record operation %s failed for %s record %d: %v", e.Op, e.Kind, e.RecordID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to blob storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
