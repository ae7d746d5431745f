package api

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/schoolsite/school-content/pkg/schoolcontent"
)

// GalleryImageResponse is the response body for a gallery image
type GalleryImageResponse struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Caption    string    `json:"caption,omitempty"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Ratio      string    `json:"ratio"`
	ImageURL   string    `json:"image_url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func galleryResponse(img *schoolcontent.GalleryImage) GalleryImageResponse {
	return GalleryImageResponse{
		ID:         img.ID,
		Title:      img.Title,
		Caption:    img.Caption,
		Width:      img.Width,
		Height:     img.Height,
		Ratio:      string(img.RatioOrCompute()),
		ImageURL:   "/gallery/" + strconv.FormatInt(img.ID, 10) + "/image",
		UploadedAt: img.UploadedAt,
	}
}

// ListGalleryImages lists gallery images, newest first. Supports limit and
// offset query parameters.
func (s *Server) ListGalleryImages(w http.ResponseWriter, r *http.Request) {
	limit, offset := 0, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid offset", http.StatusBadRequest)
			return
		}
		offset = n
	}

	images, err := s.svc.ListGalleryImages(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]GalleryImageResponse, 0, len(images))
	for _, img := range images {
		resp = append(resp, galleryResponse(img))
	}
	render.JSON(w, r, resp)
}

// GetGalleryImage retrieves gallery image metadata by ID
func (s *Server) GetGalleryImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid image ID", http.StatusBadRequest)
		return
	}

	img, err := s.svc.GetGalleryImage(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	render.JSON(w, r, galleryResponse(img))
}

// UploadGalleryImage accepts a multipart upload into the gallery
func (s *Server) UploadGalleryImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	img, err := s.svc.UploadGalleryImage(r.Context(), schoolcontent.GalleryUploadRequest{
		Data:     data,
		Filename: header.Filename,
		Title:    r.FormValue("title"),
		Caption:  r.FormValue("caption"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, galleryResponse(img))
}

// DeleteGalleryImage deletes a gallery image by ID
func (s *Server) DeleteGalleryImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid image ID", http.StatusBadRequest)
		return
	}

	if err := s.svc.DeleteGalleryImage(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
