package imageutil

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

var (
	// ErrUnsupportedFormat is returned when the header matches no known
	// image format.
	ErrUnsupportedFormat = errors.New("imageutil: unsupported format")
)

// sniff wraps r in a buffered reader and identifies the format from its
// header without consuming it.
func sniff(r io.Reader) (*bufio.Reader, string, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, FormatUnknown, fmt.Errorf("failed to read header: %w", err)
	}
	format := DetectFormat(header)
	if format == FormatUnknown {
		return nil, FormatUnknown, ErrUnsupportedFormat
	}
	return br, format, nil
}

// DecodeImage sniffs and decodes an image from r. It supports PNG, JPEG,
// GIF, BMP, WebP and TIFF, and returns the detected format name.
func DecodeImage(r io.Reader) (*RGBAImage, string, error) {
	br, format, err := sniff(r)
	if err != nil {
		return nil, format, err
	}

	img, _, err := image.Decode(br)
	if err != nil {
		return nil, format, fmt.Errorf("failed to decode %s image: %w", format, err)
	}

	return RGBAImageFromImage(img), format, nil
}

// LoadImage loads an image from the specified path.
func LoadImage(path string) (*RGBAImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := DecodeImage(f)
	return img, err
}

// DecodeConfig reads only the dimensions and color model of the image at
// path.
func DecodeConfig(path string) (image.Config, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, FormatUnknown, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	br, format, err := sniff(f)
	if err != nil {
		return image.Config{}, format, err
	}
	cfg, _, err := image.DecodeConfig(br)
	if err != nil {
		return image.Config{}, format, fmt.Errorf("failed to decode %s header: %w", format, err)
	}
	return cfg, format, nil
}

// SaveImage saves an image to the specified path, overwriting any existing
// file. Format is determined by file extension (png, jpg/jpeg, gif); any
// other extension is written as PNG.
func SaveImage(img image.Image, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".jpg", ".jpeg":
		return jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	case ".gif":
		return gif.Encode(f, img, nil)
	default:
		return png.Encode(f, img)
	}
}
