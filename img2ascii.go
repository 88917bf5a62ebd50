// Package img2ascii converts raster images into ASCII art and renders
// ASCII art back into bitmaps.
//
// The forward direction resizes an image with a vertical compression that
// compensates for tall monospace cells, converts it to 8-bit luminance and
// maps every pixel onto a fixed gradient of glyphs. The inverse direction
// lays the text out with a resolved font and paints it onto a canvas.
// Both directions are pure: they never mutate their inputs and hold no
// state between calls.
package img2ascii

import (
	"fmt"
	"math"
	"strings"

	"github.com/wbrown/img2ascii/imageutil"
)

const (
	// Gradient is the glyph ramp from darkest to lightest.
	Gradient = "@%#*+=-:. "

	// BucketWidth is the number of intensity levels that map onto one
	// glyph. The last glyph also absorbs everything above
	// BucketWidth*(len-1), so with the default gradient 225-255 all
	// become a space.
	BucketWidth = 25

	// DefaultScaleFactor compresses the image vertically so that the
	// output keeps its proportions in a character grid whose cells are
	// taller than wide.
	DefaultScaleFactor = 0.55

	// DefaultWidth is the target width in characters.
	DefaultWidth = 100

	// MinSuggestedWidth and MaxSuggestedWidth bound SuggestWidth.
	MinSuggestedWidth = 50
	MaxSuggestedWidth = 200
)

// Block is a rectangle of ASCII art: one string per row, all of equal
// length.
type Block []string

// String joins the rows with newlines. There is no trailing newline.
func (b Block) String() string {
	return strings.Join(b, "\n")
}

// Width returns the length of the rows, or 0 for an empty block.
func (b Block) Width() int {
	if len(b) == 0 {
		return 0
	}
	return len(b[0])
}

// Height returns the number of rows.
func (b Block) Height() int {
	return len(b)
}

// Validate reports whether every row has the same length.
func (b Block) Validate() error {
	w := b.Width()
	for i, line := range b {
		if len(line) != w {
			return fmt.Errorf("row %d has %d characters, expected %d", i, len(line), w)
		}
	}
	return nil
}

// ParseBlock splits text back into rows. A single trailing newline and
// carriage returns are dropped. Ragged input is returned together with
// the error from Validate so callers may decide whether to use it.
func ParseBlock(text string) (Block, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	b := Block(strings.Split(text, "\n"))
	return b, b.Validate()
}

// FormatCodeBlock wraps art in a triple-backtick fence for pasting into
// chat applications.
func FormatCodeBlock(art string) string {
	return "```\n" + art + "\n```"
}

// SuggestWidth proposes a target width for a source image of srcWidth
// pixels: a tenth of it, clamped to [MinSuggestedWidth, MaxSuggestedWidth].
func SuggestWidth(srcWidth int) int {
	return max(MinSuggestedWidth, min(MaxSuggestedWidth, srcWidth/10))
}

// ValidateGradient checks that a glyph ramp is usable: non-empty and made
// of printable ASCII only.
func ValidateGradient(gradient string) error {
	if gradient == "" {
		return fmt.Errorf("gradient is empty")
	}
	for i := 0; i < len(gradient); i++ {
		if c := gradient[i]; c < 0x20 || c > 0x7e {
			return fmt.Errorf("gradient byte %d (%#x) is not printable ASCII", i, c)
		}
	}
	return nil
}

// GlyphIndex returns the gradient index for intensity p on a ramp of n
// glyphs: p/BucketWidth, clamped to n-1.
func GlyphIndex(p uint8, n int) int {
	return min(int(p)/BucketWidth, n-1)
}

// Quantize maps row-major 8-bit intensities onto gradient glyphs and
// splits them into rows of width characters.
//
// len(pix) must be a multiple of width and width must be positive;
// anything else is a programming error and panics.
func Quantize(pix []uint8, width int, gradient string) Block {
	if width <= 0 || len(pix)%width != 0 {
		panic(fmt.Sprintf("img2ascii: %d pixels cannot be split into rows of %d", len(pix), width))
	}
	if gradient == "" {
		panic("img2ascii: empty gradient")
	}

	n := len(gradient)
	rows := make(Block, 0, len(pix)/width)
	line := make([]byte, width)
	for start := 0; start < len(pix); start += width {
		for x, p := range pix[start : start+width] {
			line[x] = gradient[GlyphIndex(p, n)]
		}
		rows = append(rows, string(line))
	}
	return rows
}

// QuantizeGray quantizes a grayscale image, honoring its stride.
func QuantizeGray(img *imageutil.GrayImage, gradient string) Block {
	if img.Width() == 0 {
		return Block{}
	}
	return Quantize(img.Pixels(), img.Width(), gradient)
}

// ResizedHeight returns the output height in rows for a srcW x srcH image
// rendered width characters wide:
//
//	round(width * (srcH / srcW) * scale)
func ResizedHeight(srcW, srcH, width int, scale float64) int {
	aspect := float64(srcH) / float64(srcW)
	return int(math.Round(float64(width) * aspect * scale))
}

// MapLuminance resizes img to width columns and ResizedHeight rows, then
// converts the result to 8-bit luminance. img is not modified.
func MapLuminance(
	img *imageutil.RGBAImage,
	width int,
	scale float64,
	interp imageutil.Interpolation,
) (*imageutil.GrayImage, error) {
	if err := ValidateWidth(width); err != nil {
		return nil, err
	}
	if img.Width() == 0 || img.Height() == 0 {
		return nil, fmt.Errorf("source image is empty (%dx%d)", img.Width(), img.Height())
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("invalid scale factor %v", scale)
	}

	height := ResizedHeight(img.Width(), img.Height(), width, scale)
	if height < 1 {
		return nil, fmt.Errorf("resized height is zero for a %dx%d source at width %d",
			img.Width(), img.Height(), width)
	}

	resized := imageutil.Resize(img, width, height, interp)
	return imageutil.ToGrayscale(resized), nil
}
