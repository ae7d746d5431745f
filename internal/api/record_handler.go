package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/schoolsite/school-content/pkg/schoolcontent"
	"github.com/schoolsite/school-content/pkg/schoolcontent/transform"
)

const maxUploadBytes = 32 << 20

// RecordResponse is the response body for a content record
type RecordResponse struct {
	ID        int64      `json:"id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	Location  string     `json:"location,omitempty"`
	EventDate *time.Time `json:"event_date,omitempty"`
	Position  string     `json:"position,omitempty"`
	SortOrder int        `json:"sort_order"`
	FileURL   string     `json:"file_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (s *Server) recordResponse(rec *schoolcontent.ContentRecord) RecordResponse {
	return RecordResponse{
		ID:        rec.ID,
		Kind:      string(rec.Kind),
		Title:     rec.Title,
		Body:      rec.Body,
		Location:  rec.Location,
		EventDate: rec.EventDate,
		Position:  rec.Position,
		SortOrder: rec.SortOrder,
		FileURL:   s.fileURL(rec.FileRef),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

// fileURL resolves a stored reference into the URL a browser can fetch.
func (s *Server) fileURL(raw string) string {
	ref := schoolcontent.ParseRef(raw)
	switch ref.Kind {
	case schoolcontent.RefKindInternal:
		return fmt.Sprintf("/files/%d", ref.ID)
	case schoolcontent.RefKindRemote:
		return ref.URL
	case schoolcontent.RefKindLegacy:
		return "/uploads/" + ref.Name
	default:
		return ""
	}
}

// ListRecords lists content records, optionally filtered by kind
func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request) {
	kind := schoolcontent.RecordKind(r.URL.Query().Get("kind"))
	if kind != "" && !kind.IsValid() {
		http.Error(w, "invalid record kind", http.StatusBadRequest)
		return
	}

	records, err := s.svc.ListRecords(r.Context(), kind)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]RecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, s.recordResponse(rec))
	}
	render.JSON(w, r, resp)
}

// GetRecord retrieves a content record by ID
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid record ID", http.StatusBadRequest)
		return
	}

	rec, err := s.svc.GetRecord(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	render.JSON(w, r, s.recordResponse(rec))
}

// CreateRecord creates a content record from a multipart form. The optional
// "file" field carries the image and "crop_data" the JSON crop intent.
func (s *Server) CreateRecord(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := schoolcontent.CreateRecordRequest{
		Kind:     schoolcontent.RecordKind(r.FormValue("kind")),
		Title:    r.FormValue("title"),
		Body:     r.FormValue("body"),
		Location: r.FormValue("location"),
		Position: r.FormValue("position"),
	}
	if v := r.FormValue("sort_order"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid sort_order", http.StatusBadRequest)
			return
		}
		req.SortOrder = n
	}
	if v := r.FormValue("event_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			http.Error(w, "invalid event_date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		req.EventDate = &t
	}

	upload, err := s.formUpload(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Upload = upload

	rec, err := s.svc.CreateRecord(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, s.recordResponse(rec))
}

// UpdateRecord updates a content record. A new "file" field replaces the
// old image; remove_file=true drops it.
func (s *Server) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid record ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := schoolcontent.UpdateRecordRequest{
		ID:         id,
		Title:      r.FormValue("title"),
		Body:       r.FormValue("body"),
		Location:   r.FormValue("location"),
		Position:   r.FormValue("position"),
		RemoveFile: r.FormValue("remove_file") == "true",
	}
	if v := r.FormValue("sort_order"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid sort_order", http.StatusBadRequest)
			return
		}
		req.SortOrder = n
	}
	if v := r.FormValue("event_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			http.Error(w, "invalid event_date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		req.EventDate = &t
	}

	upload, err := s.formUpload(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Upload = upload

	rec, err := s.svc.UpdateRecord(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	render.JSON(w, r, s.recordResponse(rec))
}

// DeleteRecord deletes a content record and cleans up its file reference
func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid record ID", http.StatusBadRequest)
		return
	}

	if err := s.svc.DeleteRecord(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// formUpload extracts the optional file field and crop intent from a parsed
// multipart form. Returns nil when no file was sent.
func (s *Server) formUpload(r *http.Request) (*schoolcontent.UploadRequest, error) {
	file, header, err := r.FormFile("file")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	upload := &schoolcontent.UploadRequest{
		Data:     data,
		Filename: header.Filename,
	}

	if raw := r.FormValue("crop_data"); raw != "" {
		var intent transform.CropIntent
		if err := json.Unmarshal([]byte(raw), &intent); err != nil {
			return nil, fmt.Errorf("invalid crop_data: %w", err)
		}
		upload.Crop = &intent
	}
	return upload, nil
}
