package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
)

// Processed is a decoded upload re-encoded for serving.
type Processed struct {
	Data   []byte
	Width  int
	Height int
}

// ShrinkImage decodes an uploaded raster image, downscales it to at most
// maxImageWidth wide, and re-encodes it as JPEG. Formats the image package
// cannot decode (webp among them) return an error; callers fall back to
// storing the original bytes.
func ShrinkImage(src io.Reader) (Processed, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Processed{}, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Processed{}, fmt.Errorf("encode jpeg: %w", err)
	}

	return Processed{Data: buf.Bytes(), Width: w, Height: h}, nil
}
