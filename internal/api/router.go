package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/schoolsite/school-content/pkg/schoolcontent"
)

// Server bundles the HTTP handlers for the school content API.
type Server struct {
	svc       schoolcontent.Service
	legacy    schoolcontent.BlobStore // pre-migration local uploads folder, may be nil
	tokenAuth *jwtauth.JWTAuth
	logger    *slog.Logger
}

// NewServer creates the API server. legacy may be nil when no local uploads
// folder is configured.
func NewServer(svc schoolcontent.Service, legacy schoolcontent.BlobStore, jwtSecret string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		svc:       svc,
		legacy:    legacy,
		tokenAuth: jwtauth.New("HS256", []byte(jwtSecret), nil),
		logger:    logger,
	}
}

// Routes returns the full route tree.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.Login)

		r.Get("/records", s.ListRecords)
		r.Get("/records/{id}", s.GetRecord)
		r.Get("/gallery", s.ListGalleryImages)
		r.Get("/gallery/{id}", s.GetGalleryImage)

		r.Route("/admin", func(r chi.Router) {
			r.Use(jwtauth.Verifier(s.tokenAuth))
			r.Use(jwtauth.Authenticator)
			r.Use(s.requireAdmin)

			r.Post("/records", s.CreateRecord)
			r.Put("/records/{id}", s.UpdateRecord)
			r.Delete("/records/{id}", s.DeleteRecord)

			r.Post("/gallery", s.UploadGalleryImage)
			r.Delete("/gallery/{id}", s.DeleteGalleryImage)

			r.Post("/users", s.CreateUser)

			r.Delete("/uploads/{name}", s.DeleteLegacyFile)
		})
	})

	r.Get("/files/{id}", s.ServeStoredFile)
	r.Get("/gallery/{id}/image", s.ServeGalleryImage)
	r.Get("/uploads/{name}", s.ServeLegacyFile)

	return r
}

// writeError maps service errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schoolcontent.ErrRecordNotFound),
		errors.Is(err, schoolcontent.ErrStoredFileNotFound),
		errors.Is(err, schoolcontent.ErrGalleryImageNotFound),
		errors.Is(err, schoolcontent.ErrUserNotFound),
		errors.Is(err, schoolcontent.ErrObjectNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, schoolcontent.ErrInvalidRecordKind),
		errors.Is(err, schoolcontent.ErrEmptyUpload):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, schoolcontent.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		s.logger.Error("request failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
