package img2ascii

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/wbrown/img2ascii/imageutil"
)

// writePNG saves img into dir and returns its path.
func writePNG(t *testing.T, dir, name string, img *imageutil.RGBAImage) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := imageutil.SaveImage(img, path); err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	return path
}

func TestConvertDimensions(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name           string
		width, height  int
		target         int
		expectedHeight int
	}{
		{"landscape 1000x500", 1000, 500, 100, 28},
		{"square", 200, 200, 40, 22},
		{"portrait", 300, 600, 50, 55},
		{"single column", 100, 100, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePNG(t, dir, tt.name+".png", imageutil.CreateGradientImage(tt.width, tt.height))

			block, err := Convert(path, tt.target)
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			if block.Height() != tt.expectedHeight {
				t.Errorf("Expected %d lines, got %d", tt.expectedHeight, block.Height())
			}
			for i, line := range block {
				if len(line) != tt.target {
					t.Errorf("Line %d: expected %d characters, got %d", i, tt.target, len(line))
				}
			}
		})
	}
}

func TestConvertSolidImages(t *testing.T) {
	tests := []struct {
		name  string
		color imageutil.RGB
		glyph byte
	}{
		{"all black", imageutil.RGB{R: 0, G: 0, B: 0}, '@'},
		{"all white", imageutil.RGB{R: 255, G: 255, B: 255}, ' '},
		{"mid gray", imageutil.RGB{R: 128, G: 128, B: 128}, '='},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, err := NewConverter(WithTargetWidth(20)).
				ConvertImage(imageutil.CreateSolidImage(64, 64, tt.color))
			if err != nil {
				t.Fatalf("ConvertImage: %v", err)
			}
			want := strings.Repeat(string(tt.glyph), 20)
			for i, line := range block {
				if line != want {
					t.Errorf("Line %d: expected %q, got %q", i, want, line)
				}
			}
		})
	}
}

func TestConvertTranslucentImage(t *testing.T) {
	tests := []struct {
		name  string
		color color.NRGBA
		want  string
	}{
		{"half transparent white", color.NRGBA{R: 255, G: 255, B: 255, A: 128}, "    "},
		{"nearly transparent black", color.NRGBA{A: 10}, "@@@@"},
		{"opaque white", color.NRGBA{R: 255, G: 255, B: 255, A: 255}, "    "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
			for y := 0; y < 20; y++ {
				for x := 0; x < 20; x++ {
					img.SetNRGBA(x, y, tt.color)
				}
			}

			block, err := NewConverter(WithTargetWidth(4),
				WithInterpolation(imageutil.InterpolationNearest)).ConvertImage(img)
			if err != nil {
				t.Fatalf("ConvertImage: %v", err)
			}
			// round(4 * 1.0 * 0.55)
			if block.Height() != 2 {
				t.Fatalf("Expected 2 lines, got %d", block.Height())
			}
			for i, line := range block {
				if line != tt.want {
					t.Errorf("Line %d: expected %q, got %q", i, tt.want, line)
				}
			}
		})
	}
}

func TestConvertGradientEnds(t *testing.T) {
	block, err := NewConverter(WithTargetWidth(100)).
		ConvertImage(imageutil.CreateGradientImage(400, 200))
	if err != nil {
		t.Fatalf("ConvertImage: %v", err)
	}
	for i, line := range block {
		if line[0] != '@' {
			t.Errorf("Line %d: expected dark left edge, got %q", i, line[0])
		}
		if line[len(line)-1] != ' ' {
			t.Errorf("Line %d: expected light right edge, got %q", i, line[len(line)-1])
		}
	}
}

func TestConvertDeterministic(t *testing.T) {
	path := writePNG(t, t.TempDir(), "checker.png", imageutil.CreateCheckerboardImage(300, 200, 25))

	first, err := Convert(path, 60)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	second, err := Convert(path, 60)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if first.String() != second.String() {
		t.Error("Converting the same image twice produced different output")
	}
}

func TestConverterConcurrentUse(t *testing.T) {
	c := NewConverter(WithTargetWidth(50), WithInterpolation(imageutil.InterpolationLinear))
	img := imageutil.CreateVerticalGradientImage(200, 200)
	want, err := c.ConvertImage(img)
	if err != nil {
		t.Fatalf("ConvertImage: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := c.ConvertImage(img)
			if err != nil {
				t.Errorf("ConvertImage: %v", err)
				return
			}
			results[i] = b.String()
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if got != want.String() {
			t.Errorf("Goroutine %d produced different output", i)
		}
	}
}

func TestConvertInvalidWidthBeforeDecode(t *testing.T) {
	// The path does not exist, so any decode attempt would surface as a
	// ConversionError instead.
	missing := filepath.Join(t.TempDir(), "missing.png")

	for _, width := range []int{0, -1, -100} {
		_, err := Convert(missing, width)
		var widthErr *InvalidWidthError
		if !errors.As(err, &widthErr) {
			t.Errorf("Convert(width=%d): expected InvalidWidthError, got %v", width, err)
		}
		var convErr *ConversionError
		if errors.As(err, &convErr) {
			t.Errorf("Convert(width=%d): decode was attempted", width)
		}
	}

	_, err := ConvertReader(strings.NewReader("not an image"), 0)
	var widthErr *InvalidWidthError
	if !errors.As(err, &widthErr) {
		t.Errorf("ConvertReader(width=0): expected InvalidWidthError, got %v", err)
	}
}

func TestConvertMissingFile(t *testing.T) {
	_, err := Convert(filepath.Join(t.TempDir(), "missing.png"), 80)

	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("Expected ConversionError, got %v", err)
	}
	var decodeErr *ImageDecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("Expected wrapped ImageDecodeError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestConvertUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.png")
	if err := os.WriteFile(path, []byte("just some text, not pixels"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Convert(path, 80)
	var decodeErr *ImageDecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Expected ImageDecodeError, got %v", err)
	}
	if decodeErr.Source != path {
		t.Errorf("Expected source %q, got %q", path, decodeErr.Source)
	}
	if !errors.Is(err, imageutil.ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat in chain, got %v", err)
	}
}

func TestConvertReader(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, imageutil.CreateSolidImage(100, 50, imageutil.RGB{})); err != nil {
		t.Fatal(err)
	}

	block, err := ConvertReader(&buf, 10)
	if err != nil {
		t.Fatalf("ConvertReader: %v", err)
	}
	// round(10 * 0.5 * 0.55) = round(2.75)
	if block.String() != "@@@@@@@@@@\n@@@@@@@@@@\n@@@@@@@@@@" {
		t.Errorf("Unexpected block:\n%s", block)
	}
}

func TestConverterOptions(t *testing.T) {
	c := NewConverter()
	if c.TargetWidth != DefaultWidth {
		t.Errorf("Expected default width %d, got %d", DefaultWidth, c.TargetWidth)
	}
	if c.ScaleFactor != DefaultScaleFactor {
		t.Errorf("Expected default scale %v, got %v", DefaultScaleFactor, c.ScaleFactor)
	}
	if c.Interpolation != imageutil.InterpolationCubic {
		t.Errorf("Expected cubic interpolation, got %v", c.Interpolation)
	}
	if c.Gradient() != Gradient {
		t.Errorf("Expected default gradient, got %q", c.Gradient())
	}

	c = NewConverter(WithScaleFactor(1.0), WithGradient("#."), WithSharpen(true))
	img := imageutil.CreateSolidImage(10, 10, imageutil.RGB{R: 255, G: 255, B: 255})
	c.TargetWidth = 5
	block, err := c.ConvertImage(img)
	if err != nil {
		t.Fatalf("ConvertImage: %v", err)
	}
	if block.Height() != 5 {
		t.Errorf("Expected 5 lines at scale 1.0, got %d", block.Height())
	}
	if block[0] != "....." {
		t.Errorf("Expected custom gradient glyphs, got %q", block[0])
	}
}

func TestConverterConversionErrors(t *testing.T) {
	img := imageutil.CreateSolidImage(100, 100, imageutil.RGB{})
	tests := []struct {
		name string
		conv *Converter
		img  *imageutil.RGBAImage
	}{
		{"empty gradient", NewConverter(WithGradient("")), img},
		{"zero scale", NewConverter(WithScaleFactor(0)), img},
		{"height rounds to zero", NewConverter(WithTargetWidth(10)),
			imageutil.CreateSolidImage(1000, 10, imageutil.RGB{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, err := tt.conv.ConvertImage(tt.img)
			var convErr *ConversionError
			if !errors.As(err, &convErr) {
				t.Fatalf("Expected ConversionError, got %v", err)
			}
			if block != nil {
				t.Error("Expected no partial output")
			}
		})
	}
}
