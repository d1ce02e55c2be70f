// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds RGBA pixel data for a texture pending upload.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// EncodedImage is an image in a container format (PNG, JPEG, BMP, TIFF, WebP) that has not been decoded yet.
// Embedded images carry their bytes in Data; external images name a file in Path.
type EncodedImage struct {
	// Name is an identifier for this image, used in error messages.
	Name string

	// Path is the file path for external images (empty for embedded).
	Path string

	// Data contains the encoded bytes for embedded images.
	Data []byte

	// MimeType is the declared image format (e.g., "image/png"). Decoding sniffs the format and does not rely on it.
	MimeType string
}

// Decode decodes the image to RGBA pixel data.
// Uses either the embedded Data bytes or loads from Path on disk.
// Reference: https://pkg.go.dev/image
//
// Returns:
//   - *TextureStagingData: the decoded pixels, 4 bytes per pixel in row-major order
//   - error: error if the source is missing or the format is unknown
func (e *EncodedImage) Decode() (*TextureStagingData, error) {
	if e == nil {
		return nil, fmt.Errorf("image is nil")
	}

	var img image.Image
	var err error

	if len(e.Data) > 0 {
		img, _, err = image.Decode(bytes.NewReader(e.Data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode embedded image %q: %w", e.Name, err)
		}
	} else if e.Path != "" {
		file, fileErr := os.Open(e.Path)
		if fileErr != nil {
			return nil, fmt.Errorf("failed to open image file %s: %w", e.Path, fileErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image file %s: %w", e.Path, err)
		}
	} else {
		return nil, fmt.Errorf("image %q has neither data nor path", e.Name)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return &TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}
