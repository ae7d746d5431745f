package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/schoolsite/school-content/pkg/schoolcontent"
)

// Repository implements schoolcontent.Repository using in-memory storage
type Repository struct {
	mu            sync.RWMutex
	storedFiles   map[int64]*schoolcontent.StoredFile
	galleryImages map[int64]*schoolcontent.GalleryImage
	records       map[int64]*schoolcontent.ContentRecord
	users         map[int64]*schoolcontent.User
	usersByName   map[string]int64

	nextFileID    int64
	nextGalleryID int64
	nextRecordID  int64
	nextUserID    int64
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		storedFiles:   make(map[int64]*schoolcontent.StoredFile),
		galleryImages: make(map[int64]*schoolcontent.GalleryImage),
		records:       make(map[int64]*schoolcontent.ContentRecord),
		users:         make(map[int64]*schoolcontent.User),
		usersByName:   make(map[string]int64),
	}
}

// Stored file operations

func (r *Repository) CreateStoredFile(ctx context.Context, f *schoolcontent.StoredFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextFileID++
	f.ID = r.nextFileID

	// Copy to avoid external modifications
	fileCopy := *f
	r.storedFiles[f.ID] = &fileCopy
	return nil
}

func (r *Repository) GetStoredFile(ctx context.Context, id int64) (*schoolcontent.StoredFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, exists := r.storedFiles[id]
	if !exists {
		return nil, schoolcontent.ErrStoredFileNotFound
	}
	fileCopy := *f
	return &fileCopy, nil
}

func (r *Repository) DeleteStoredFile(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.storedFiles[id]; !exists {
		return schoolcontent.ErrStoredFileNotFound
	}
	delete(r.storedFiles, id)
	return nil
}

// Gallery image operations

func (r *Repository) CreateGalleryImage(ctx context.Context, img *schoolcontent.GalleryImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextGalleryID++
	img.ID = r.nextGalleryID

	imgCopy := *img
	r.galleryImages[img.ID] = &imgCopy
	return nil
}

func (r *Repository) GetGalleryImage(ctx context.Context, id int64) (*schoolcontent.GalleryImage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	img, exists := r.galleryImages[id]
	if !exists {
		return nil, schoolcontent.ErrGalleryImageNotFound
	}
	imgCopy := *img
	return &imgCopy, nil
}

func (r *Repository) ListGalleryImages(ctx context.Context, limit, offset int) ([]*schoolcontent.GalleryImage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	images := make([]*schoolcontent.GalleryImage, 0, len(r.galleryImages))
	for _, img := range r.galleryImages {
		imgCopy := *img
		images = append(images, &imgCopy)
	}

	// Newest first, matching the public gallery page
	sort.Slice(images, func(i, j int) bool {
		if images[i].UploadedAt.Equal(images[j].UploadedAt) {
			return images[i].ID > images[j].ID
		}
		return images[i].UploadedAt.After(images[j].UploadedAt)
	})

	if offset > len(images) {
		offset = len(images)
	}
	images = images[offset:]
	if limit > 0 && limit < len(images) {
		images = images[:limit]
	}
	return images, nil
}

func (r *Repository) DeleteGalleryImage(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.galleryImages[id]; !exists {
		return schoolcontent.ErrGalleryImageNotFound
	}
	delete(r.galleryImages, id)
	return nil
}

// Content record operations

func (r *Repository) CreateRecord(ctx context.Context, rec *schoolcontent.ContentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextRecordID++
	rec.ID = r.nextRecordID

	recCopy := *rec
	r.records[rec.ID] = &recCopy
	return nil
}

func (r *Repository) GetRecord(ctx context.Context, id int64) (*schoolcontent.ContentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.records[id]
	if !exists {
		return nil, schoolcontent.ErrRecordNotFound
	}
	recCopy := *rec
	return &recCopy, nil
}

func (r *Repository) UpdateRecord(ctx context.Context, rec *schoolcontent.ContentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[rec.ID]; !exists {
		return schoolcontent.ErrRecordNotFound
	}
	recCopy := *rec
	r.records[rec.ID] = &recCopy
	return nil
}

func (r *Repository) DeleteRecord(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[id]; !exists {
		return schoolcontent.ErrRecordNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *Repository) ListRecords(ctx context.Context, kind schoolcontent.RecordKind) ([]*schoolcontent.ContentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*schoolcontent.ContentRecord, 0)
	for _, rec := range r.records {
		if kind != "" && rec.Kind != kind {
			continue
		}
		recCopy := *rec
		records = append(records, &recCopy)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].SortOrder != records[j].SortOrder {
			return records[i].SortOrder < records[j].SortOrder
		}
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})
	return records, nil
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, u *schoolcontent.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextUserID++
	u.ID = r.nextUserID

	userCopy := *u
	r.users[u.ID] = &userCopy
	r.usersByName[u.Username] = u.ID
	return nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*schoolcontent.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.usersByName[username]
	if !exists {
		return nil, schoolcontent.ErrUserNotFound
	}
	userCopy := *r.users[id]
	return &userCopy, nil
}
