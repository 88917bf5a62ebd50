package img2ascii

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/wbrown/img2ascii/imageutil"
)

func TestGlyphIndexLaw(t *testing.T) {
	n := len(Gradient)
	prev := 0
	for p := 0; p <= 255; p++ {
		got := GlyphIndex(uint8(p), n)
		want := min(p/25, 9)
		if got != want {
			t.Errorf("GlyphIndex(%d): expected %d, got %d", p, want, got)
		}
		if got < prev {
			t.Errorf("GlyphIndex(%d)=%d is lower than GlyphIndex(%d)=%d", p, got, p-1, prev)
		}
		prev = got
	}
}

func TestGlyphIndexTopBucketClamped(t *testing.T) {
	for _, p := range []uint8{225, 240, 249, 250, 255} {
		if got := GlyphIndex(p, len(Gradient)); got != 9 {
			t.Errorf("GlyphIndex(%d): expected 9, got %d", p, got)
		}
	}
}

func TestQuantize(t *testing.T) {
	pix := []uint8{
		0, 25, 50, 75,
		100, 125, 150, 175,
		200, 224, 225, 255,
	}
	got := Quantize(pix, 4, Gradient)
	want := Block{"@%#*", "+=-:", "..  "}
	if len(got) != len(want) {
		t.Fatalf("Expected %d rows, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Row %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestQuantizeCustomGradient(t *testing.T) {
	got := Quantize([]uint8{0, 24, 25, 255}, 2, "ab")
	if got.String() != "aa\nbb" {
		t.Errorf("Expected %q, got %q", "aa\nbb", got.String())
	}
}

func TestQuantizePanicsOnRaggedInput(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for 5 pixels split into rows of 2")
		}
	}()
	Quantize(make([]uint8, 5), 2, Gradient)
}

func TestQuantizeGrayHonorsStride(t *testing.T) {
	full := image.NewGray(image.Rect(0, 0, 5, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 5; x++ {
			full.SetGray(x, y, color.Gray{Y: uint8(255 * y)})
		}
	}
	// the middle three columns share the 5-pixel stride of full
	gray := &imageutil.GrayImage{Gray: full.SubImage(image.Rect(1, 0, 4, 2)).(*image.Gray)}

	got := QuantizeGray(gray, Gradient)
	if got.String() != "@@@\n   " {
		t.Errorf("Expected %q, got %q", "@@@\n   ", got.String())
	}
}

func TestResizedHeight(t *testing.T) {
	tests := []struct {
		srcW, srcH, width int
		scale             float64
		expected          int
	}{
		{1000, 500, 100, 0.55, 28},
		{100, 100, 100, 0.55, 55},
		{640, 480, 80, 0.55, 33},
		{200, 100, 1, 0.55, 0},
		{10, 1000, 1, 0.55, 55},
		{100, 100, 10, 1.0, 10},
	}

	for _, tt := range tests {
		got := ResizedHeight(tt.srcW, tt.srcH, tt.width, tt.scale)
		if got != tt.expected {
			t.Errorf("ResizedHeight(%d, %d, %d, %v): expected %d, got %d",
				tt.srcW, tt.srcH, tt.width, tt.scale, tt.expected, got)
		}
	}
}

func TestSuggestWidth(t *testing.T) {
	tests := []struct {
		srcWidth int
		expected int
	}{
		{0, 50},
		{320, 50},
		{500, 50},
		{1000, 100},
		{1279, 127},
		{2000, 200},
		{8000, 200},
	}

	for _, tt := range tests {
		if got := SuggestWidth(tt.srcWidth); got != tt.expected {
			t.Errorf("SuggestWidth(%d): expected %d, got %d", tt.srcWidth, tt.expected, got)
		}
	}
}

func TestValidateGradient(t *testing.T) {
	tests := []struct {
		gradient string
		valid    bool
	}{
		{Gradient, true},
		{"@", true},
		{"", false},
		{"ab\tc", false},
		{"█▓▒░", false},
	}

	for _, tt := range tests {
		err := ValidateGradient(tt.gradient)
		if tt.valid && err != nil {
			t.Errorf("ValidateGradient(%q): unexpected error %v", tt.gradient, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("ValidateGradient(%q): expected error", tt.gradient)
		}
	}
}

func TestBlock(t *testing.T) {
	b := Block{"@@", "  ", "::"}
	if b.Width() != 2 || b.Height() != 3 {
		t.Errorf("Expected 2x3, got %dx%d", b.Width(), b.Height())
	}
	if b.String() != "@@\n  \n::" {
		t.Errorf("Unexpected String(): %q", b.String())
	}
	if err := b.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if (Block{}).Width() != 0 {
		t.Error("Empty block should have width 0")
	}
	if err := (Block{"abc", "ab"}).Validate(); err == nil {
		t.Error("Expected ragged block to fail validation")
	}
}

func TestParseBlock(t *testing.T) {
	b, err := ParseBlock("@@@\r\n...\n   \n")
	if err != nil {
		t.Fatalf("ParseBlock: %v", err)
	}
	if b.Height() != 3 || b.Width() != 3 {
		t.Errorf("Expected 3x3, got %dx%d", b.Width(), b.Height())
	}

	ragged, err := ParseBlock("ab\nc")
	if err == nil {
		t.Error("Expected error for ragged text")
	}
	if ragged.Height() != 2 {
		t.Errorf("Expected ragged rows to be returned, got %d", ragged.Height())
	}
}

func TestFormatCodeBlock(t *testing.T) {
	got := FormatCodeBlock("@@\n::")
	want := "```\n@@\n::\n```"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if !strings.HasPrefix(got, "```\n") || !strings.HasSuffix(got, "\n```") {
		t.Error("Code block fences missing")
	}
}

func TestMapLuminanceDimensions(t *testing.T) {
	img := imageutil.CreateGradientImage(1000, 500)
	gray, err := MapLuminance(img, 100, DefaultScaleFactor, imageutil.InterpolationCubic)
	if err != nil {
		t.Fatalf("MapLuminance: %v", err)
	}
	if gray.Width() != 100 || gray.Height() != 28 {
		t.Errorf("Expected 100x28, got %dx%d", gray.Width(), gray.Height())
	}
	if img.Width() != 1000 || img.Height() != 500 {
		t.Error("Source image was modified")
	}
}

func TestMapLuminanceErrors(t *testing.T) {
	src := imageutil.CreateSolidImage(10, 10, imageutil.RGB{})
	tests := []struct {
		name  string
		img   *imageutil.RGBAImage
		width int
		scale float64
	}{
		{"zero width", src, 0, DefaultScaleFactor},
		{"empty source", imageutil.NewRGBAImage(0, 0), 10, DefaultScaleFactor},
		{"zero scale", src, 10, 0},
		{"negative scale", src, 10, -1},
		{"height rounds to zero", imageutil.CreateSolidImage(1000, 10, imageutil.RGB{}), 10, DefaultScaleFactor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := MapLuminance(tt.img, tt.width, tt.scale, imageutil.InterpolationCubic); err == nil {
				t.Error("Expected error")
			}
		})
	}
}
