package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

var ErrInvalidImage = errors.New("file is not a valid image")

// NormalizeImage decodes r (jpeg, png, gif, bmp, tiff, webp), applies EXIF
// orientation, bounds the longer side to maxDim and re-encodes as PNG.
func NormalizeImage(r io.Reader, maxDim int) (*bytes.Buffer, error) {
	img, err := DecodeImage(r)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	if maxDim > 0 && (b.Dx() > maxDim || b.Dy() > maxDim) {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return &buf, nil
}

// DecodeImage only checks that r holds a decodable image.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}
