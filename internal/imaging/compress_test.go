package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestImage(t *testing.T, dir, name string, encode func(*bytes.Buffer, image.Image) error) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for x := 0; x < 32; x++ {
		for y := 0; y < 32; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, encode(&buf, img))

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func encodeJPEG(buf *bytes.Buffer, img image.Image) error {
	return jpeg.Encode(buf, img, &jpeg.Options{Quality: 100})
}

func encodePNG(buf *bytes.Buffer, img image.Image) error {
	return png.Encode(buf, img)
}

func TestIsImage(t *testing.T) {
	dir := t.TempDir()

	jpg := writeTestImage(t, dir, "photo.jpg", encodeJPEG)
	assert.True(t, IsImage(jpg))

	garbage := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not an image"), 0o644))
	assert.False(t, IsImage(garbage))

	assert.False(t, IsImage(filepath.Join(dir, "missing.jpg")))
}

func TestCompress_JPEG(t *testing.T) {
	dir := t.TempDir()
	in := writeTestImage(t, dir, "photo.jpg", encodeJPEG)

	out, err := NewCompressor().Compress(in)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "photo_compressed.jpg"), out)

	// The artifact must itself decode as an image.
	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	_, format, err := image.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestCompress_PNG(t *testing.T) {
	dir := t.TempDir()
	in := writeTestImage(t, dir, "chart.png", encodePNG)

	out, err := NewCompressor().Compress(in)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "chart_compressed.png"))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	_, format, err := image.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestCompress_InvalidInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.jpg")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xd8, 0x00, 0x01}, 0o644))

	_, err := NewCompressor().Compress(path)
	require.Error(t, err)

	// No stray output on failure.
	_, statErr := os.Stat(filepath.Join(dir, "corrupt_compressed.jpg"))
	assert.True(t, os.IsNotExist(statErr))
}
