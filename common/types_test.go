package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{G: 255, B: 10, A: 255})
	return img
}

func TestEncodedImageDecodeFormats(t *testing.T) {
	encoders := map[string]func(*bytes.Buffer, image.Image) error{
		"png":  func(b *bytes.Buffer, img image.Image) error { return png.Encode(b, img) },
		"bmp":  func(b *bytes.Buffer, img image.Image) error { return bmp.Encode(b, img) },
		"tiff": func(b *bytes.Buffer, img image.Image) error { return tiff.Encode(b, img, nil) },
	}

	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, encode(&buf, testImage()))

			staged, err := (&EncodedImage{Name: name, Data: buf.Bytes()}).Decode()
			require.NoError(t, err)
			assert.Equal(t, uint32(2), staged.Width)
			assert.Equal(t, uint32(1), staged.Height)
			assert.Equal(t, []byte{255, 0, 0, 255, 0, 255, 10, 255}, staged.Pixels)
		})
	}
}

func TestEncodedImageDecodeFromPath(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))
	path := filepath.Join(t.TempDir(), "tex.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	staged, err := (&EncodedImage{Path: path}).Decode()
	require.NoError(t, err)
	assert.Len(t, staged.Pixels, 8)
}

func TestEncodedImageDecodeErrors(t *testing.T) {
	_, err := (&EncodedImage{Name: "empty"}).Decode()
	assert.Error(t, err)

	_, err = (&EncodedImage{Name: "junk", Data: []byte("not an image")}).Decode()
	assert.Error(t, err)

	_, err = (&EncodedImage{Path: filepath.Join(t.TempDir(), "missing.png")}).Decode()
	assert.Error(t, err)

	var nilImage *EncodedImage
	_, err = nilImage.Decode()
	assert.Error(t, err)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 0, 3, 4))
	assert.Equal(t, "", Coalesce("", ""))
	assert.Equal(t, float32(32), Coalesce(float32(0), 32))
}
