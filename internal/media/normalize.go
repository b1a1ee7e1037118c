// Package media turns uploaded photo/signature images into stored,
// bounded-size PNG files and hands back the reference kept on the visitor.
package media

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
)

// DefaultMaxDim bounds both sides of a stored attachment.
const DefaultMaxDim = 125

// ErrEmptyImage is returned for zero-length uploads.
var ErrEmptyImage = errors.New("media: empty image")

// Normalize decodes raw as any supported raster format, shrinks it to fit
// within maxDim x maxDim keeping its aspect ratio and re-encodes it as PNG.
// Images already inside the box are re-encoded unscaled.
func Normalize(raw []byte, maxDim int) ([]byte, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyImage
	}
	if maxDim <= 0 {
		maxDim = DefaultMaxDim
	}
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() > maxDim || b.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
