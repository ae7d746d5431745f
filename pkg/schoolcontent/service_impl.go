package schoolcontent

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/schoolsite/school-content/pkg/schoolcontent/objectkey"
	"github.com/schoolsite/school-content/pkg/schoolcontent/transform"
)

// uploadPrefix is the fixed key prefix for objects in the remote bucket.
const uploadPrefix = "uploads/"

// service implements the Service interface
type service struct {
	repository Repository
	remote     BlobStore // nil when remote storage is unconfigured
	bucket     string
	verifier   URLVerifier
	logger     *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithRemoteStore configures the remote object storage backend and its
// bucket name. Without this option every upload is persisted as a database
// row.
func WithRemoteStore(store BlobStore, bucket string) Option {
	return func(s *service) {
		s.remote = store
		s.bucket = bucket
	}
}

// WithURLVerifier overrides the reachability prober.
func WithURLVerifier(v URLVerifier) Option {
	return func(s *service) {
		s.verifier = v
	}
}

// WithLogger sets the structured logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.verifier == nil {
		s.verifier = NewHTTPVerifier(DefaultVerifyTimeout)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

// Upload pipeline

// StoreUpload transforms the uploaded bytes and persists them: to the remote
// bucket when one is configured and its public URL verifies as reachable,
// otherwise as a StoredFile row. The returned reference is what the owning
// record persists.
func (s *service) StoreUpload(ctx context.Context, req UploadRequest) (FileRef, error) {
	if len(req.Data) == 0 {
		return FileRef{}, ErrEmptyUpload
	}

	out := transform.Process(req.Data, req.Filename, req.Crop)
	name := objectkey.Generate(req.Filename)

	if s.remote == nil {
		return s.storeInternal(ctx, name, out.MimeType, out.Data)
	}

	key := uploadPrefix + name
	params := UploadParams{ObjectKey: key, MimeType: out.MimeType}
	if err := s.remote.UploadWithParams(ctx, bytes.NewReader(out.Data), params); err != nil {
		return FileRef{}, &StorageError{Backend: "remote", Key: key, Op: "upload", Err: err}
	}

	publicURL := s.remote.PublicURL(key)
	if err := s.verifier.Verify(ctx, publicURL); err != nil {
		s.logger.Warn("public url unreachable, storing upload in database",
			"url", publicURL, "key", key, "error", err)
		storageFallbacksTotal.Inc()
		return s.storeInternal(ctx, name, out.MimeType, out.Data)
	}

	uploadsTotal.WithLabelValues(destinationRemote).Inc()
	return RemoteRef(publicURL), nil
}

// storeInternal commits the bytes as a StoredFile row and returns its
// internal reference. Every call creates a fresh row: stored files have no
// natural key.
func (s *service) storeInternal(ctx context.Context, name, mimeType string, data []byte) (FileRef, error) {
	f := &StoredFile{
		Filename:  name,
		MimeType:  mimeType,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repository.CreateStoredFile(ctx, f); err != nil {
		return FileRef{}, fmt.Errorf("store upload in database: %w", err)
	}
	uploadsTotal.WithLabelValues(destinationDatabase).Inc()
	return InternalRef(f.ID), nil
}

func (s *service) GetStoredFile(ctx context.Context, id int64) (*StoredFile, error) {
	return s.repository.GetStoredFile(ctx, id)
}

// CleanupRef releases the backing storage behind a reference string. All
// failures are swallowed: a record in a partially inconsistent state from an
// earlier failure must still be mutable.
func (s *service) CleanupRef(ctx context.Context, raw string) {
	ref := ParseRef(raw)
	switch ref.Kind {
	case RefKindInternal:
		if err := s.repository.DeleteStoredFile(ctx, ref.ID); err != nil {
			s.logger.Debug("stored file cleanup skipped", "id", ref.ID, "error", err)
		}
	case RefKindRemote:
		if s.remote == nil {
			return
		}
		objectPath, ok := ref.RemoteObjectPath(s.bucket)
		if !ok {
			return
		}
		if err := s.remote.Delete(ctx, objectPath); err != nil {
			s.logger.Warn("remote object cleanup failed", "path", objectPath, "error", err)
		}
	case RefKindLegacy, RefKindNone:
		// Legacy local files live in an uploads folder the service does not
		// own; removal is the caller's concern.
	}
}

// Gallery operations

// UploadGalleryImage persists a gallery image as a database row. Gallery
// images never delegate to remote storage.
func (s *service) UploadGalleryImage(ctx context.Context, req GalleryUploadRequest) (*GalleryImage, error) {
	if len(req.Data) == 0 {
		return nil, ErrEmptyUpload
	}

	out := transform.Normalize(req.Data, req.Filename)
	img := &GalleryImage{
		Title:      req.Title,
		Caption:    req.Caption,
		Data:       out.Data,
		Filename:   objectkey.Generate(req.Filename),
		MimeType:   out.MimeType,
		Width:      out.Width,
		Height:     out.Height,
		Ratio:      RatioCategoryFor(out.Width, out.Height),
		UploadedAt: time.Now().UTC(),
	}
	if err := s.repository.CreateGalleryImage(ctx, img); err != nil {
		return nil, fmt.Errorf("create gallery image: %w", err)
	}
	uploadsTotal.WithLabelValues(destinationDatabase).Inc()
	return img, nil
}

func (s *service) GetGalleryImage(ctx context.Context, id int64) (*GalleryImage, error) {
	return s.repository.GetGalleryImage(ctx, id)
}

func (s *service) ListGalleryImages(ctx context.Context, limit, offset int) ([]*GalleryImage, error) {
	return s.repository.ListGalleryImages(ctx, limit, offset)
}

func (s *service) DeleteGalleryImage(ctx context.Context, id int64) error {
	return s.repository.DeleteGalleryImage(ctx, id)
}

// Content record operations

func (s *service) CreateRecord(ctx context.Context, req CreateRecordRequest) (*ContentRecord, error) {
	if !req.Kind.IsValid() {
		return nil, ErrInvalidRecordKind
	}

	var fileRef string
	if req.Upload != nil {
		ref, err := s.StoreUpload(ctx, *req.Upload)
		if err != nil {
			return nil, err
		}
		fileRef = ref.String()
	}

	now := time.Now().UTC()
	rec := &ContentRecord{
		Kind:      req.Kind,
		Title:     req.Title,
		Body:      req.Body,
		Location:  req.Location,
		Position:  req.Position,
		EventDate: req.EventDate,
		SortOrder: req.SortOrder,
		FileRef:   fileRef,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repository.CreateRecord(ctx, rec); err != nil {
		return nil, &RecordError{Kind: req.Kind, Op: "create", Err: err}
	}
	return rec, nil
}

func (s *service) GetRecord(ctx context.Context, id int64) (*ContentRecord, error) {
	return s.repository.GetRecord(ctx, id)
}

// ListRecords lists records of one kind, or every kind when kind is empty.
func (s *service) ListRecords(ctx context.Context, kind RecordKind) ([]*ContentRecord, error) {
	if kind != "" && !kind.IsValid() {
		return nil, ErrInvalidRecordKind
	}
	return s.repository.ListRecords(ctx, kind)
}

// UpdateRecord replaces the record's fields. A new upload (or RemoveFile)
// cleans up the old reference before the record persists the new one.
func (s *service) UpdateRecord(ctx context.Context, req UpdateRecordRequest) (*ContentRecord, error) {
	rec, err := s.repository.GetRecord(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	switch {
	case req.Upload != nil:
		ref, err := s.StoreUpload(ctx, *req.Upload)
		if err != nil {
			return nil, err
		}
		s.CleanupRef(ctx, rec.FileRef)
		rec.FileRef = ref.String()
	case req.RemoveFile:
		s.CleanupRef(ctx, rec.FileRef)
		rec.FileRef = ""
	}

	rec.Title = req.Title
	rec.Body = req.Body
	rec.Location = req.Location
	rec.Position = req.Position
	rec.EventDate = req.EventDate
	rec.SortOrder = req.SortOrder
	rec.UpdatedAt = time.Now().UTC()

	if err := s.repository.UpdateRecord(ctx, rec); err != nil {
		return nil, &RecordError{RecordID: rec.ID, Kind: rec.Kind, Op: "update", Err: err}
	}
	return rec, nil
}

// DeleteRecord removes the record after cleaning up its file reference.
// Legacy local filenames are left for the caller, which owns the uploads
// folder.
func (s *service) DeleteRecord(ctx context.Context, id int64) error {
	rec, err := s.repository.GetRecord(ctx, id)
	if err != nil {
		return err
	}
	s.CleanupRef(ctx, rec.FileRef)
	if err := s.repository.DeleteRecord(ctx, id); err != nil {
		return &RecordError{RecordID: id, Kind: rec.Kind, Op: "delete", Err: err}
	}
	return nil
}

// User operations

func (s *service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		IsAdmin:      req.IsAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repository.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repository.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
