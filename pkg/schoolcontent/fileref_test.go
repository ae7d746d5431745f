package schoolcontent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want FileRef
	}{
		{
			name: "empty string is the zero ref",
			in:   "",
			want: FileRef{},
		},
		{
			name: "internal reference",
			in:   "internal-reference/42",
			want: InternalRef(42),
		},
		{
			name: "malformed internal reference degrades to legacy",
			in:   "internal-reference/abc",
			want: LegacyRef("internal-reference/abc"),
		},
		{
			name: "public object url is remote",
			in:   "https://cdn.example.com/storage/v1/object/public/school/uploads/a.jpg",
			want: RemoteRef("https://cdn.example.com/storage/v1/object/public/school/uploads/a.jpg"),
		},
		{
			name: "bare filename is legacy",
			in:   "photo.jpg",
			want: LegacyRef("photo.jpg"),
		},
		{
			name: "arbitrary url without marker is legacy",
			in:   "https://example.com/photo.jpg",
			want: LegacyRef("https://example.com/photo.jpg"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRef(tt.in))
		})
	}
}

func TestFileRefStringRoundTrip(t *testing.T) {
	refs := []string{
		"internal-reference/7",
		"https://cdn.example.com/storage/v1/object/public/school/uploads/b.png",
		"legacy-photo.jpg",
	}
	for _, s := range refs {
		assert.Equal(t, s, ParseRef(s).String())
	}
	assert.Equal(t, "", FileRef{}.String())
}

func TestPublicObjectURL(t *testing.T) {
	url := PublicObjectURL("https://cdn.example.com/", "school", "uploads/a.jpg")
	assert.Equal(t, "https://cdn.example.com/storage/v1/object/public/school/uploads/a.jpg", url)

	// Parsing the built URL recovers the object path.
	path, ok := ParseRef(url).RemoteObjectPath("school")
	require.True(t, ok)
	assert.Equal(t, "uploads/a.jpg", path)
}

func TestRemoteObjectPath(t *testing.T) {
	tests := []struct {
		name     string
		ref      FileRef
		bucket   string
		wantPath string
		wantOK   bool
	}{
		{
			name:     "matching bucket",
			ref:      RemoteRef("https://cdn.example.com/storage/v1/object/public/school/uploads/a.jpg"),
			bucket:   "school",
			wantPath: "uploads/a.jpg",
			wantOK:   true,
		},
		{
			name:   "foreign bucket rejected",
			ref:    RemoteRef("https://cdn.example.com/storage/v1/object/public/other/uploads/a.jpg"),
			bucket: "school",
		},
		{
			name:     "query string stripped",
			ref:      RemoteRef("https://cdn.example.com/storage/v1/object/public/school/uploads/a.jpg?token=xyz"),
			bucket:   "school",
			wantPath: "uploads/a.jpg",
			wantOK:   true,
		},
		{
			name:   "non-remote ref rejected",
			ref:    InternalRef(3),
			bucket: "school",
		},
		{
			name:   "empty bucket rejected",
			ref:    RemoteRef("https://cdn.example.com/storage/v1/object/public/school/uploads/a.jpg"),
			bucket: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := tt.ref.RemoteObjectPath(tt.bucket)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestRatioCategoryFor(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		want          RatioCategory
	}{
		{"exact square", 400, 400, RatioSquare},
		{"near square within tolerance", 410, 400, RatioSquare},
		{"exact three four", 300, 400, RatioThreeFour},
		{"near three four", 310, 400, RatioThreeFour},
		{"tall portrait", 200, 400, RatioPortrait},
		{"wide landscape", 800, 400, RatioLandscape},
		{"zero dimensions default landscape", 0, 0, RatioLandscape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RatioCategoryFor(tt.width, tt.height))
		})
	}
}
