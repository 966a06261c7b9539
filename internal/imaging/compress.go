// Package imaging implements the synchronous image compressor: decode an
// uploaded image with the standard codecs and resave it with lossier settings.
package imaging

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// jpegQuality trades visible fidelity for size; 85 keeps artifacts below what
// most photos show at 1:1.
const jpegQuality = 85

// IsImage reports whether the file decodes as a supported image format.
// This is the binary classifier for uploads: anything that is not a decodable
// image is treated as video and handed to the transcoder, which reports its
// own failure for genuinely unusable input.
func IsImage(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	_, _, err = image.DecodeConfig(f)
	return err == nil
}

// Compressor resaves images in place-adjacent output files.
type Compressor struct{}

// NewCompressor returns a Compressor.
func NewCompressor() *Compressor {
	return &Compressor{}
}

// Compress decodes the image at path and writes a recompressed copy next to it
// as <base>_compressed<ext>, returning the output path. JPEGs are re-encoded
// at reduced quality, PNGs at maximum compression, GIFs are resaved; any other
// decodable format falls back to JPEG output. Returns an error for files that
// do not decode as an image.
func (c *Compressor) Compress(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	outPath := strings.TrimSuffix(path, filepath.Ext(path)) + "_compressed" + ext

	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	switch format {
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(out, img)
	case "gif":
		err = gif.Encode(out, img, nil)
	default:
		err = jpeg.Encode(out, img, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("encode %s: %w", format, err)
	}

	return outPath, nil
}
