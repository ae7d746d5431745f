// Package transform converts arbitrary uploaded images into normalized
// output suitable for display: a bounded downscale pass, an optional crop
// (explicit zoom/pan intent or centered cover fit), and re-encoding to JPEG
// or PNG. Every failure degrades to a simpler strategy and ultimately to the
// original bytes; the pipeline never rejects an upload.
package transform

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// maxDimension bounds the longer side of a decoded image before any crop
// math runs.
const maxDimension = 1200

// Zoom limits for explicit crop intents.
const (
	minZoom = 1.0
	maxZoom = 6.0
)

// jpegQuality is applied to all JPEG output.
const jpegQuality = 95

// Box is a target output size in pixels.
type Box struct {
	Width  int
	Height int
}

var defaultBox = Box{Width: 400, Height: 400}

// boxesByPosition maps a crop intent's positionType to its target box.
// Unknown or empty position types use the default square box.
var boxesByPosition = map[string]Box{
	"leadership": {Width: 300, Height: 400},
	"teaching":   {Width: 400, Height: 400},
}

// BoxFor returns the target box for a position type.
func BoxFor(positionType string) Box {
	if box, ok := boxesByPosition[positionType]; ok {
		return box
	}
	return defaultBox
}

// CropIntent carries the user-supplied crop parameters from the upload form.
// Zoom and the offsets are expressed in scaled-image pixel coordinates: the
// crop window is centered on the scaled image's center plus (PosX, PosY).
type CropIntent struct {
	PositionType string  `json:"positionType"`
	Zoom         float64 `json:"zoom"`
	PosX         float64 `json:"posX"`
	PosY         float64 `json:"posY"`
}

// Result is the outcome of a transform. When Transformed is false the Data
// is the caller's original bytes, untouched.
type Result struct {
	Data        []byte
	MimeType    string
	Width       int
	Height      int
	Transformed bool
}

// Process runs the full thumbnail pipeline: decode, downscale, crop to the
// target box (intent-driven or cover fit), and re-encode. Non-image input
// and any pipeline failure yield the original bytes verbatim.
func Process(data []byte, filename string, intent *CropIntent) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = passthrough(data, filename)
		}
	}()

	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return passthrough(data, filename)
	}
	src = downscale(src)

	box := defaultBox
	if intent != nil {
		box = BoxFor(intent.PositionType)
	}

	var out *image.NRGBA
	if intent != nil {
		out = cropWithIntent(src, box, intent)
	} else {
		out = coverFit(src, box)
	}

	encoded, mimeType, err := encode(out, filename)
	if err != nil {
		return passthrough(data, filename)
	}
	return Result{
		Data:        encoded,
		MimeType:    mimeType,
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		Transformed: true,
	}
}

// Normalize runs the downscale and re-encode passes without cropping,
// preserving the image's aspect ratio. Gallery uploads use it so the output
// dimensions still reflect the original shape.
func Normalize(data []byte, filename string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = passthrough(data, filename)
		}
	}()

	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return passthrough(data, filename)
	}
	src = downscale(src)

	encoded, mimeType, err := encode(src, filename)
	if err != nil {
		return passthrough(data, filename)
	}
	return Result{
		Data:        encoded,
		MimeType:    mimeType,
		Width:       src.Bounds().Dx(),
		Height:      src.Bounds().Dy(),
		Transformed: true,
	}
}

// downscale bounds the longer side at maxDimension, preserving aspect ratio.
// Images already within bounds pass through unchanged.
func downscale(src image.Image) image.Image {
	b := src.Bounds()
	if b.Dx() <= maxDimension && b.Dy() <= maxDimension {
		return src
	}
	return imaging.Fit(src, maxDimension, maxDimension, imaging.Lanczos)
}

// clampZoom normalizes the user-supplied zoom: non-positive values mean "no
// zoom", anything above the ceiling is pinned to it.
func clampZoom(zoom float64) float64 {
	if zoom <= 0 {
		return minZoom
	}
	return math.Min(math.Max(zoom, minZoom), maxZoom)
}

// cropWithIntent applies the explicit zoom/pan crop. Degenerate geometry
// falls back to a plain centered cover fit at the target size.
func cropWithIntent(src image.Image, box Box, intent *CropIntent) *image.NRGBA {
	rect, ok := cropWindow(src.Bounds().Dx(), src.Bounds().Dy(), box, intent)
	if !ok {
		return imaging.Fill(src, box.Width, box.Height, imaging.Center, imaging.Lanczos)
	}
	cropped := imaging.Crop(src, rect)
	return imaging.Resize(cropped, box.Width, box.Height, imaging.Lanczos)
}

// cropWindow maps the crop box from scaled-image coordinates back onto the
// original image. The scaled image is (w*zoom, h*zoom); the crop window of
// the target size is centered there, offset by (posX, posY), and its corners
// divide back by zoom and clamp into [0, dimension].
func cropWindow(origW, origH int, box Box, intent *CropIntent) (image.Rectangle, bool) {
	zoom := clampZoom(intent.Zoom)

	cx := float64(origW)*zoom/2 + intent.PosX
	cy := float64(origH)*zoom/2 + intent.PosY
	halfW := float64(box.Width) / 2
	halfH := float64(box.Height) / 2

	left := clampf((cx-halfW)/zoom, 0, float64(origW))
	top := clampf((cy-halfH)/zoom, 0, float64(origH))
	right := clampf((cx+halfW)/zoom, 0, float64(origW))
	bottom := clampf((cy+halfH)/zoom, 0, float64(origH))

	rect := image.Rect(
		int(math.Round(left)), int(math.Round(top)),
		int(math.Round(right)), int(math.Round(bottom)),
	)
	if rect.Dx() <= 0 || rect.Dy() <= 0 {
		return image.Rectangle{}, false
	}
	return rect, true
}

func clampf(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// coverFit fills the target box exactly without distortion, cropping the
// excess on the longer dimension. If the fill comes out wrong-sized
// (degenerate source), fall back to a 2x-target thumbnail plus center crop.
func coverFit(src image.Image, box Box) *image.NRGBA {
	dst := imaging.Fill(src, box.Width, box.Height, imaging.Center, imaging.Lanczos)
	if dst.Bounds().Dx() == box.Width && dst.Bounds().Dy() == box.Height {
		return dst
	}
	thumb := imaging.Fit(src, 2*box.Width, 2*box.Height, imaging.Lanczos)
	return imaging.CropCenter(thumb, box.Width, box.Height)
}

// encode picks the output codec from the original filename's extension:
// JPEG for .jpg/.jpeg, PNG otherwise. JPEG output is first composited onto a
// white background so alpha or palette sources never produce a broken
// encode; PNG preserves alpha.
func encode(img image.Image, filename string) ([]byte, string, error) {
	var buf bytes.Buffer
	if wantsJPEG(filename) {
		if err := imaging.Encode(&buf, flattenOntoWhite(img), imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/jpeg", nil
	}
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "image/png", nil
}

func wantsJPEG(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return true
	}
	return false
}

// flattenOntoWhite composites the image onto an opaque white canvas using
// its alpha channel as the mask.
func flattenOntoWhite(img image.Image) *image.NRGBA {
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}

// passthrough returns the original bytes with a best-effort MIME type.
func passthrough(data []byte, filename string) Result {
	return Result{Data: data, MimeType: detectMimeType(data, filename)}
}

// detectMimeType prefers the filename extension and falls back to content
// sniffing.
func detectMimeType(data []byte, filename string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	return http.DetectContentType(data)
}
