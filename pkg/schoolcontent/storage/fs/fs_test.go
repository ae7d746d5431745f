package fs

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolsite/school-content/pkg/schoolcontent"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New(Config{BaseDir: t.TempDir(), URLPrefix: "/uploads"})
	require.NoError(t, err)
	return b
}

func TestUploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	require.NoError(t, b.Upload(ctx, "photo.jpg", bytes.NewReader([]byte("bytes"))))

	rc, err := b.Download(ctx, "photo.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, []byte("bytes"), data)

	require.NoError(t, b.Delete(ctx, "photo.jpg"))
	_, err = b.Download(ctx, "photo.jpg")
	assert.ErrorIs(t, err, schoolcontent.ErrObjectNotFound)
	assert.ErrorIs(t, b.Delete(ctx, "photo.jpg"), schoolcontent.ErrObjectNotFound)
}

func TestObjectKeyTraversalRejected(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	keys := []string{"../escape.txt", "/etc/passwd", "a/../../b", "."}
	for _, key := range keys {
		_, err := b.Download(ctx, key)
		assert.Error(t, err, "key %q", key)
		assert.NotErrorIs(t, err, schoolcontent.ErrObjectNotFound, "key %q", key)
	}
}

func TestPublicURL(t *testing.T) {
	b := newTestBackend(t)
	assert.Equal(t, "/uploads/photo.jpg", b.PublicURL("photo.jpg"))

	bare, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "", bare.PublicURL("photo.jpg"))
}
