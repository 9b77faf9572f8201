// Package generator serializes rendered frames to image files.
//
// All output follows a unified pipeline: render an image.Image first,
// then encode it as PNG (lossless, the default) or JPEG.
package generator

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"
)

// Format names an output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// Config holds parameters for serialization.
type Config struct {
	Format  Format // Encoding (default: PNG)
	Quality int    // JPEG quality 1-100 (default: 92)
}

// ParseFormat maps a format name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use png or jpeg", s)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Encode writes img to w in the configured format.
func Encode(w io.Writer, img image.Image, cfg Config) error {
	switch cfg.Format {
	case "", FormatPNG:
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		if err := enc.Encode(w, img); err != nil {
			return fmt.Errorf("encode PNG: %w", err)
		}
	case FormatJPEG:
		q := cfg.Quality
		if q <= 0 || q > 100 {
			q = 92
		}
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: q}); err != nil {
			return fmt.Errorf("encode JPEG: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}
	return nil
}

// EncodeBytes is Encode into a fresh buffer.
func EncodeBytes(img image.Image, cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Generate writes encoded image bytes to output. The format is inferred
// from the file extension:
//   - ".png" → PNG image
//   - ".jpg", ".jpeg" → JPEG image
func Generate(output string, data []byte) error {
	if _, err := ParseFormat(filepath.Ext(output)); err != nil {
		return err
	}
	return WriteFile(output, data)
}
