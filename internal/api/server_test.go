package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolsite/school-content/pkg/schoolcontent"
	repomemory "github.com/schoolsite/school-content/pkg/schoolcontent/repo/memory"
	fsstorage "github.com/schoolsite/school-content/pkg/schoolcontent/storage/fs"
)

type testEnv struct {
	ts     *httptest.Server
	svc    schoolcontent.Service
	legacy *fsstorage.Backend
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := repomemory.New()
	svc, err := schoolcontent.New(schoolcontent.WithRepository(repo))
	require.NoError(t, err)

	legacy, err := fsstorage.New(fsstorage.Config{BaseDir: t.TempDir(), URLPrefix: "/uploads"})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = svc.CreateUser(ctx, schoolcontent.CreateUserRequest{
		Username: "admin", Email: "admin@school.example", Password: "admin-pass", IsAdmin: true,
	})
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, schoolcontent.CreateUserRequest{
		Username: "viewer", Email: "viewer@school.example", Password: "viewer-pass",
	})
	require.NoError(t, err)

	server := NewServer(svc, legacy, "test-secret", slog.New(slog.DiscardHandler))
	ts := httptest.NewServer(server.Routes())
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, svc: svc, legacy: legacy}
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(LoginRequest{Username: username, Password: password})
	resp, err := http.Post(e.ts.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var lr LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lr))
	require.NotEmpty(t, lr.Token)
	return lr.Token
}

func (e *testEnv) do(t *testing.T, method, path, token string, contentType string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.ts.URL+path, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func pngUpload(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, h, color.White), imaging.PNG))
	return buf.Bytes()
}

// multipartBody builds a form with text fields and an optional file field.
func multipartBody(t *testing.T, fields map[string]string, filename string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileData != nil {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(fileData)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	body, _ := json.Marshal(LoginRequest{Username: "admin", Password: "wrong"})
	resp, err := http.Post(env.ts.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := env.login(t, "admin", "admin-pass")
	assert.NotEmpty(t, token)
}

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	env := newTestEnv(t)
	body, contentType := multipartBody(t, map[string]string{"kind": "news", "title": "x"}, "", nil)

	// No token
	resp := env.do(t, http.MethodPost, "/api/admin/records", "", contentType, bytes.NewReader(body.Bytes()))
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Authenticated but not admin
	viewerToken := env.login(t, "viewer", "viewer-pass")
	resp = env.do(t, http.MethodPost, "/api/admin/records", viewerToken, contentType, bytes.NewReader(body.Bytes()))
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admin
	adminToken := env.login(t, "admin", "admin-pass")
	resp = env.do(t, http.MethodPost, "/api/admin/records", adminToken, contentType, bytes.NewReader(body.Bytes()))
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestRecordLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "admin", "admin-pass")

	// Create with an image and an explicit crop intent.
	fields := map[string]string{
		"kind":      "teacher",
		"title":     "Ms. Rivera",
		"body":      "Mathematics",
		"position":  "Head of Department",
		"crop_data": `{"positionType":"leadership","zoom":1.5,"posX":0,"posY":0}`,
	}
	body, contentType := multipartBody(t, fields, "rivera.png", pngUpload(t, 900, 1200))
	resp := env.do(t, http.MethodPost, "/api/admin/records", token, contentType, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created RecordResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	assert.Equal(t, "teacher", created.Kind)
	require.NotEmpty(t, created.FileURL)

	// The served file is readable and is a PNG.
	resp, err := http.Get(env.ts.URL + created.FileURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	// Public list filtered by kind.
	resp, err = http.Get(env.ts.URL + "/api/records?kind=teacher")
	require.NoError(t, err)
	var listed []RecordResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()
	require.Len(t, listed, 1)

	// Update without a file keeps fields fresh and drops the old image.
	fields = map[string]string{
		"kind":        "teacher",
		"title":       "Ms. Rivera",
		"body":        "Mathematics & Physics",
		"remove_file": "true",
	}
	body, contentType = multipartBody(t, fields, "", nil)
	resp = env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/records/%d", created.ID), token, contentType, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated RecordResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	resp.Body.Close()
	assert.Empty(t, updated.FileURL)

	// Delete, then the public read 404s.
	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/records/%d", created.ID), token, "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(env.ts.URL + fmt.Sprintf("/api/records/%d", created.ID))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListRecordsRejectsUnknownKind(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.ts.URL + "/api/records?kind=homework")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGalleryOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "admin", "admin-pass")

	body, contentType := multipartBody(t,
		map[string]string{"title": "Sports Day", "caption": "Track events"},
		"sports.png", pngUpload(t, 300, 400))
	resp := env.do(t, http.MethodPost, "/api/admin/gallery", token, contentType, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created GalleryImageResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	assert.Equal(t, "three_four", created.Ratio)
	require.NotEmpty(t, created.ImageURL)

	resp, err := http.Get(env.ts.URL + created.ImageURL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(env.ts.URL + "/api/gallery?limit=10")
	require.NoError(t, err)
	var listed []GalleryImageResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()
	require.Len(t, listed, 1)

	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/gallery/%d", created.ID), token, "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestLegacyFileServingAndDeletion(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.legacy.Upload(context.Background(), "old-photo.jpg", bytes.NewReader([]byte("jpeg bytes"))))

	resp, err := http.Get(env.ts.URL + "/uploads/old-photo.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []byte("jpeg bytes"), data)

	token := env.login(t, "admin", "admin-pass")
	resp = env.do(t, http.MethodDelete, "/api/admin/uploads/old-photo.jpg", token, "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(env.ts.URL + "/uploads/old-photo.jpg")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeStoredFileNotFound(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.ts.URL + "/files/9999")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateUserOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "admin", "admin-pass")

	body, _ := json.Marshal(CreateUserRequest{
		Username: "clerk", Email: "clerk@school.example", Password: "clerk-pass",
	})
	resp := env.do(t, http.MethodPost, "/api/admin/users", token, "application/json", bytes.NewReader(body))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created UserResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	assert.Equal(t, "clerk", created.Username)
	assert.False(t, created.IsAdmin)

	// The new account can log in.
	env.login(t, "clerk", "clerk-pass")
}
