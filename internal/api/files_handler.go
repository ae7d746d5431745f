package api

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/schoolsite/school-content/pkg/schoolcontent"
)

// ServeStoredFile serves the bytes of a database-stored file. This is the
// read path for "internal-reference/<id>" references.
func (s *Server) ServeStoredFile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid file ID", http.StatusBadRequest)
		return
	}

	f, err := s.svc.GetStoredFile(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", f.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(f.Data)
}

// ServeGalleryImage serves the bytes of a gallery image
func (s *Server) ServeGalleryImage(w http.ResponseWriter, r *http.Request) {
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

	w.Header().Set("Content-Type", img.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(img.Data)
}

// ServeLegacyFile serves a file from the pre-migration local uploads folder
func (s *Server) ServeLegacyFile(w http.ResponseWriter, r *http.Request) {
	if s.legacy == nil {
		http.Error(w, "local uploads not configured", http.StatusNotFound)
		return
	}

	name := path.Base(chi.URLParam(r, "name"))
	rc, err := s.legacy.Download(r.Context(), name)
	if err != nil {
		if errors.Is(err, schoolcontent.ErrObjectNotFound) {
			http.Error(w, "file not found", http.StatusNotFound)
			return
		}
		s.writeError(w, err)
		return
	}
	defer rc.Close()

	if meta, err := s.legacy.GetObjectMeta(r.Context(), name); err == nil && meta.ContentType != "" {
		w.Header().Set("Content-Type", meta.ContentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	io.Copy(w, rc)
}

// DeleteLegacyFile removes a file from the local uploads folder. Cleanup of
// legacy references is owned here rather than by the reference resolver.
func (s *Server) DeleteLegacyFile(w http.ResponseWriter, r *http.Request) {
	if s.legacy == nil {
		http.Error(w, "local uploads not configured", http.StatusNotFound)
		return
	}

	name := path.Base(chi.URLParam(r, "name"))
	if err := s.legacy.Delete(r.Context(), name); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
