package transform

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeImage(t *testing.T, img image.Image, format imaging.Format) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

func solidImage(w, h int, c color.Color) *image.NRGBA {
	return imaging.New(w, h, c)
}

func decodeResult(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestProcessNonImagePassthrough(t *testing.T) {
	data := []byte("%PDF-1.4 not an image")

	res := Process(data, "syllabus.pdf", nil)

	assert.False(t, res.Transformed)
	assert.Equal(t, data, res.Data)
	assert.Equal(t, "application/pdf", res.MimeType)
}

func TestProcessCoverFitDefaultBox(t *testing.T) {
	// Wide landscape source, no crop intent: output is exactly the
	// default box with the excess width cropped away.
	src := encodeImage(t, solidImage(2000, 1000, color.White), imaging.JPEG)

	res := Process(src, "banner.jpg", nil)

	require.True(t, res.Transformed)
	assert.Equal(t, "image/jpeg", res.MimeType)
	assert.Equal(t, 400, res.Width)
	assert.Equal(t, 400, res.Height)

	out := decodeResult(t, res.Data)
	assert.Equal(t, 400, out.Bounds().Dx())
	assert.Equal(t, 400, out.Bounds().Dy())
}

func TestProcessPositionTypeSelectsBox(t *testing.T) {
	src := encodeImage(t, solidImage(900, 1200, color.White), imaging.JPEG)

	res := Process(src, "principal.jpg", &CropIntent{PositionType: "leadership", Zoom: 1})

	require.True(t, res.Transformed)
	assert.Equal(t, 300, res.Width)
	assert.Equal(t, 400, res.Height)
}

func TestProcessJPEGFromAlphaSource(t *testing.T) {
	// Transparent PNG re-encoded as JPEG must composite onto white, not
	// onto black or garbage.
	src := encodeImage(t, solidImage(500, 500, color.NRGBA{0, 0, 0, 0}), imaging.PNG)

	res := Process(src, "logo.jpg", nil)

	require.True(t, res.Transformed)
	assert.Equal(t, "image/jpeg", res.MimeType)

	out := decodeResult(t, res.Data)
	r, g, b, _ := out.At(200, 200).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestProcessPNGOutputForNonJPEGNames(t *testing.T) {
	src := encodeImage(t, solidImage(600, 600, color.White), imaging.PNG)

	res := Process(src, "icon.png", nil)

	require.True(t, res.Transformed)
	assert.Equal(t, "image/png", res.MimeType)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name           string
		width, height  int
		wantW, wantH   int
	}{
		{"within bounds untouched", 1000, 500, 1000, 500},
		{"exactly at bound untouched", 1200, 800, 1200, 800},
		{"landscape bounded by width", 2400, 1200, 1200, 600},
		{"portrait bounded by height", 1000, 2000, 600, 1200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := encodeImage(t, solidImage(tt.width, tt.height, color.White), imaging.PNG)

			res := Normalize(src, "photo.png")

			require.True(t, res.Transformed)
			assert.Equal(t, tt.wantW, res.Width)
			assert.Equal(t, tt.wantH, res.Height)
		})
	}
}

func TestClampZoom(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero means no zoom", 0, 1},
		{"negative means no zoom", -3, 1},
		{"below floor pins to floor", 0.5, 1},
		{"in range passes through", 2.5, 2.5},
		{"above ceiling pins to ceiling", 9, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampZoom(tt.in))
		})
	}
}

func TestCropWindowCentered(t *testing.T) {
	rect, ok := cropWindow(1000, 800, Box{Width: 400, Height: 400}, &CropIntent{Zoom: 1})

	require.True(t, ok)
	assert.Equal(t, image.Rect(300, 200, 700, 600), rect)
}

func TestCropWindowZoomShrinksSourceWindow(t *testing.T) {
	// At zoom 2 the same 400x400 output window covers only 200x200 source
	// pixels around the center.
	rect, ok := cropWindow(1000, 800, Box{Width: 400, Height: 400}, &CropIntent{Zoom: 2})

	require.True(t, ok)
	assert.Equal(t, image.Rect(400, 300, 600, 500), rect)
}

func TestCropWindowClampsToImage(t *testing.T) {
	// Large pan offsets push the window off the image; corners clamp to
	// the image bounds instead of going negative.
	rect, ok := cropWindow(1000, 800, Box{Width: 400, Height: 400}, &CropIntent{Zoom: 1, PosX: -10000, PosY: -10000})

	require.False(t, ok)
	assert.Equal(t, image.Rectangle{}, rect)
}

func TestBoxFor(t *testing.T) {
	assert.Equal(t, Box{Width: 300, Height: 400}, BoxFor("leadership"))
	assert.Equal(t, Box{Width: 400, Height: 400}, BoxFor("teaching"))
	assert.Equal(t, Box{Width: 400, Height: 400}, BoxFor(""))
	assert.Equal(t, Box{Width: 400, Height: 400}, BoxFor("unknown"))
}

func TestProcessCorruptImagePassthrough(t *testing.T) {
	// Valid PNG magic with a truncated body decodes with an error and must
	// fall back to the original bytes.
	src := encodeImage(t, solidImage(100, 100, color.White), imaging.PNG)
	truncated := src[:20]

	res := Process(truncated, "broken.png", nil)

	assert.False(t, res.Transformed)
	assert.Equal(t, truncated, res.Data)
}
