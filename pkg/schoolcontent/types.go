package schoolcontent

import (
	"math"
	"time"
)

// RecordKind identifies which section of the site a content record belongs to.
type RecordKind string

// Record kind constants (typed).
const (
	RecordKindNews     RecordKind = "news"
	RecordKindEvent    RecordKind = "event"
	RecordKindTeacher  RecordKind = "teacher"
	RecordKindFacility RecordKind = "facility"
	RecordKindSyllabus RecordKind = "syllabus"
	RecordKindSetting  RecordKind = "setting"
	RecordKindSlider   RecordKind = "slider"
)

// IsValid reports whether k is one of the known record kinds.
func (k RecordKind) IsValid() bool {
	switch k {
	case RecordKindNews, RecordKindEvent, RecordKindTeacher, RecordKindFacility,
		RecordKindSyllabus, RecordKindSetting, RecordKindSlider:
		return true
	}
	return false
}

// RatioCategory buckets a gallery image by its width/height ratio.
type RatioCategory string

// Ratio category constants (typed).
const (
	RatioSquare    RatioCategory = "square"
	RatioThreeFour RatioCategory = "three_four"
	RatioPortrait  RatioCategory = "portrait"
	RatioLandscape RatioCategory = "landscape"
)

// ratioTolerance is the approximate-equality window used when matching the
// 1:1 and 3:4 buckets.
const ratioTolerance = 0.05

// RatioCategoryFor computes the ratio category for the given pixel
// dimensions. Images within the tolerance of 1:1 are square, within the
// tolerance of 3:4 are three_four; everything else splits into portrait or
// landscape. Unknown dimensions land in landscape.
func RatioCategoryFor(width, height int) RatioCategory {
	if width <= 0 || height <= 0 {
		return RatioLandscape
	}
	r := float64(width) / float64(height)
	switch {
	case math.Abs(r-1.0) <= ratioTolerance:
		return RatioSquare
	case math.Abs(r-0.75) <= ratioTolerance:
		return RatioThreeFour
	case r < 1.0:
		return RatioPortrait
	default:
		return RatioLandscape
	}
}

// StoredFile is an opaque binary blob owned by the database. It is created
// when an upload cannot be placed in remote storage, and referenced by
// content records through an internal reference.
type StoredFile struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mime_type"`
	Data      []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// ContentRecord is the generalized content entity behind news, events,
// teachers, facilities, syllabus entries, school settings and home sliders.
// FileRef holds the record's file reference string; empty means no file.
type ContentRecord struct {
	ID        int64      `json:"id"`
	Kind      RecordKind `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	Location  string     `json:"location,omitempty"`
	EventDate *time.Time `json:"event_date,omitempty"`
	Position  string     `json:"position,omitempty"`
	SortOrder int        `json:"sort_order"`
	FileRef   string     `json:"file_ref,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// GalleryImage stores image bytes directly in the database. It never
// delegates to remote storage.
type GalleryImage struct {
	ID         int64         `json:"id"`
	Title      string        `json:"title,omitempty"`
	Caption    string        `json:"caption,omitempty"`
	Data       []byte        `json:"-"`
	Filename   string        `json:"filename"`
	MimeType   string        `json:"mime_type"`
	Width      int           `json:"width,omitempty"`
	Height     int           `json:"height,omitempty"`
	Ratio      RatioCategory `json:"ratio"`
	UploadedAt time.Time     `json:"uploaded_at"`
}

// RatioOrCompute returns the stored ratio category, computing it from the
// dimensions when the row predates ratio tracking.
func (g *GalleryImage) RatioOrCompute() RatioCategory {
	if g.Ratio != "" {
		return g.Ratio
	}
	return RatioCategoryFor(g.Width, g.Height)
}

// User is an admin panel account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}
