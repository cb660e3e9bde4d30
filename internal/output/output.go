// Package output writes captured images to files or streams.
package output

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/example/scrcap/internal/logger"
)

// Format is an image encoding.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpg"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// JPEGQuality is used for JPEG output.
var JPEGQuality = 92

// ParseFormat accepts a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	}
	return "", fmt.Errorf("unsupported image format %q", s)
}

// FormatForPath picks the format from path's extension, or fallback when the
// path has none.
func FormatForPath(path string, fallback Format) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return fallback, nil
	}
	return ParseFormat(ext)
}

// Encode writes img to w.
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case PNG, "":
		return png.Encode(w, img)
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	}
	return fmt.Errorf("unsupported image format %q", format)
}

// Save writes img to path, creating parent directories. The format follows
// the extension of path, or fallback when path has none.
func Save(path string, img image.Image, fallback Format) error {
	format, err := FormatForPath(path, fallback)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory %q: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output %q: %w", path, err)
	}
	if err := Encode(f, img, format); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write %s to %q: %w", strings.ToUpper(string(format)), path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %q: %w", path, err)
	}
	logger.WithComponent("output").Debug().Str("path", path).Str("format", string(format)).Msg("saved")
	return nil
}
