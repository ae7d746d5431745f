package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schoolsite/school-content/pkg/schoolcontent"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements schoolcontent.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("duplicate entry in %s", operation)
		case "23503": // foreign_key_violation
			return fmt.Errorf("referenced record not found")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Stored file operations

func (r *Repository) CreateStoredFile(ctx context.Context, f *schoolcontent.StoredFile) error {
	query := `
		INSERT INTO stored_files (filename, mime_type, data, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		f.Filename, f.MimeType, f.Data, f.CreatedAt).Scan(&f.ID)
	if err != nil {
		return r.handlePostgresError("create stored file", err)
	}
	return nil
}

func (r *Repository) GetStoredFile(ctx context.Context, id int64) (*schoolcontent.StoredFile, error) {
	query := `
		SELECT id, filename, mime_type, data, created_at
		FROM stored_files WHERE id = $1`

	var f schoolcontent.StoredFile
	err := r.db.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.Filename, &f.MimeType, &f.Data, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, schoolcontent.ErrStoredFileNotFound
		}
		return nil, r.handlePostgresError("get stored file", err)
	}
	return &f, nil
}

func (r *Repository) DeleteStoredFile(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM stored_files WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete stored file", err)
	}
	if tag.RowsAffected() == 0 {
		return schoolcontent.ErrStoredFileNotFound
	}
	return nil
}

// Gallery image operations

func (r *Repository) CreateGalleryImage(ctx context.Context, img *schoolcontent.GalleryImage) error {
	query := `
		INSERT INTO gallery_images (
			title, caption, data, filename, mime_type,
			width, height, ratio_category, uploaded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		img.Title, img.Caption, img.Data, img.Filename, img.MimeType,
		img.Width, img.Height, string(img.Ratio), img.UploadedAt).Scan(&img.ID)
	if err != nil {
		return r.handlePostgresError("create gallery image", err)
	}
	return nil
}

func (r *Repository) GetGalleryImage(ctx context.Context, id int64) (*schoolcontent.GalleryImage, error) {
	query := `
		SELECT id, title, caption, data, filename, mime_type,
		       width, height, ratio_category, uploaded_at
		FROM gallery_images WHERE id = $1`

	img, err := scanGalleryImage(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, schoolcontent.ErrGalleryImageNotFound
		}
		return nil, r.handlePostgresError("get gallery image", err)
	}
	return img, nil
}

func (r *Repository) ListGalleryImages(ctx context.Context, limit, offset int) ([]*schoolcontent.GalleryImage, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, title, caption, data, filename, mime_type,
		       width, height, ratio_category, uploaded_at
		FROM gallery_images
		ORDER BY uploaded_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, r.handlePostgresError("list gallery images", err)
	}
	defer rows.Close()

	var images []*schoolcontent.GalleryImage
	for rows.Next() {
		img, err := scanGalleryImage(rows)
		if err != nil {
			return nil, r.handlePostgresError("list gallery images", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list gallery images", err)
	}
	return images, nil
}

func scanGalleryImage(row pgx.Row) (*schoolcontent.GalleryImage, error) {
	var img schoolcontent.GalleryImage
	var ratio string
	err := row.Scan(
		&img.ID, &img.Title, &img.Caption, &img.Data, &img.Filename,
		&img.MimeType, &img.Width, &img.Height, &ratio, &img.UploadedAt)
	if err != nil {
		return nil, err
	}
	img.Ratio = schoolcontent.RatioCategory(ratio)
	return &img, nil
}

func (r *Repository) DeleteGalleryImage(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM gallery_images WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete gallery image", err)
	}
	if tag.RowsAffected() == 0 {
		return schoolcontent.ErrGalleryImageNotFound
	}
	return nil
}

// Content record operations

func (r *Repository) CreateRecord(ctx context.Context, rec *schoolcontent.ContentRecord) error {
	query := `
		INSERT INTO content_records (
			kind, title, body, location, event_date, position,
			sort_order, file_ref, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		string(rec.Kind), rec.Title, rec.Body, rec.Location, rec.EventDate,
		rec.Position, rec.SortOrder, rec.FileRef, rec.CreatedAt, rec.UpdatedAt).Scan(&rec.ID)
	if err != nil {
		return r.handlePostgresError("create record", err)
	}
	return nil
}

func (r *Repository) GetRecord(ctx context.Context, id int64) (*schoolcontent.ContentRecord, error) {
	query := `
		SELECT id, kind, title, body, location, event_date, position,
		       sort_order, file_ref, created_at, updated_at
		FROM content_records WHERE id = $1`

	rec, err := scanRecord(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, schoolcontent.ErrRecordNotFound
		}
		return nil, r.handlePostgresError("get record", err)
	}
	return rec, nil
}

func (r *Repository) UpdateRecord(ctx context.Context, rec *schoolcontent.ContentRecord) error {
	query := `
		UPDATE content_records SET
			title = $2, body = $3, location = $4, event_date = $5,
			position = $6, sort_order = $7, file_ref = $8, updated_at = $9
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		rec.ID, rec.Title, rec.Body, rec.Location, rec.EventDate,
		rec.Position, rec.SortOrder, rec.FileRef, rec.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update record", err)
	}
	if tag.RowsAffected() == 0 {
		return schoolcontent.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) DeleteRecord(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM content_records WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete record", err)
	}
	if tag.RowsAffected() == 0 {
		return schoolcontent.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) ListRecords(ctx context.Context, kind schoolcontent.RecordKind) ([]*schoolcontent.ContentRecord, error) {
	// Empty kind lists every record kind.
	query := `
		SELECT id, kind, title, body, location, event_date, position,
		       sort_order, file_ref, created_at, updated_at
		FROM content_records
		WHERE $1 = '' OR kind = $1
		ORDER BY sort_order ASC, created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, string(kind))
	if err != nil {
		return nil, r.handlePostgresError("list records", err)
	}
	defer rows.Close()

	var records []*schoolcontent.ContentRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, r.handlePostgresError("list records", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list records", err)
	}
	return records, nil
}

func scanRecord(row pgx.Row) (*schoolcontent.ContentRecord, error) {
	var rec schoolcontent.ContentRecord
	var kind string
	err := row.Scan(
		&rec.ID, &kind, &rec.Title, &rec.Body, &rec.Location, &rec.EventDate,
		&rec.Position, &rec.SortOrder, &rec.FileRef, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.Kind = schoolcontent.RecordKind(kind)
	return &rec, nil
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, u *schoolcontent.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.IsAdmin, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		return r.handlePostgresError("create user", err)
	}
	return nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*schoolcontent.User, error) {
	query := `
		SELECT id, username, email, password_hash, is_admin, created_at
		FROM users WHERE username = $1`

	var u schoolcontent.User
	err := r.db.QueryRow(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, schoolcontent.ErrUserNotFound
		}
		return nil, r.handlePostgresError("get user by username", err)
	}
	return &u, nil
}
