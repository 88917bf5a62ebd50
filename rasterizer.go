package img2ascii

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	// DefaultPadding is the margin around the text in pixels.
	DefaultPadding = 5
	// DefaultFontSize is the font size in points.
	DefaultFontSize = 10.0
	// DefaultDPI is the resolution the font size is interpreted at.
	DefaultDPI = 72.0
	// DefaultMaxPixels caps the canvas area.
	DefaultMaxPixels = 64 << 20
)

var (
	// DefaultBackground is the canvas color, #2C3E50.
	DefaultBackground color.Color = color.RGBA{R: 0x2C, G: 0x3E, B: 0x50, A: 0xFF}
	// DefaultForeground is the text color.
	DefaultForeground color.Color = color.White
)

// FontSpec names the font the rasterizer should try first.
type FontSpec struct {
	// Path is a TrueType/OpenType file or collection (.ttc, .otc).
	// Empty means go straight to the fallbacks.
	Path string
	// Size in points; DefaultFontSize when zero.
	Size float64
	// DPI; DefaultDPI when zero.
	DPI float64
}

func (s FontSpec) withDefaults() FontSpec {
	if s.Size <= 0 {
		s.Size = DefaultFontSize
	}
	if s.DPI <= 0 {
		s.DPI = DefaultDPI
	}
	return s
}

// FaceLoader is one step of the font fallback chain.
type FaceLoader struct {
	Name string
	Load func(spec FontSpec) (font.Face, error)
}

var parseGoMono = sync.OnceValues(func() (*truetype.Font, error) {
	return freetype.ParseFont(gomono.TTF)
})

// GoMonoFallback renders with the embedded Go Mono font at the requested
// size.
var GoMonoFallback = FaceLoader{
	Name: "Go Mono",
	Load: func(spec FontSpec) (font.Face, error) {
		f, err := parseGoMono()
		if err != nil {
			return nil, fmt.Errorf("failed to parse embedded Go Mono: %w", err)
		}
		return truetype.NewFace(f, &truetype.Options{
			Size:    spec.Size,
			DPI:     spec.DPI,
			Hinting: font.HintingFull,
		}), nil
	},
}

// BasicFallback is the fixed 7x13 bitmap face. It ignores the requested
// size and cannot fail.
var BasicFallback = FaceLoader{
	Name: "basicfont 7x13",
	Load: func(FontSpec) (font.Face, error) {
		return basicfont.Face7x13, nil
	},
}

// DefaultFallbacks returns the chain used when the requested font cannot
// be loaded.
func DefaultFallbacks() []FaceLoader {
	return []FaceLoader{GoMonoFallback, BasicFallback}
}

// LoadFontFace loads the font file named by spec.Path. Collections are
// opened with x/image/font/opentype and their first font is used; single
// fonts go through freetype, with opentype as a second attempt for CFF
// outlines freetype cannot parse.
func LoadFontFace(spec FontSpec) (font.Face, error) {
	spec = spec.withDefaults()
	data, err := os.ReadFile(spec.Path)
	if err != nil {
		return nil, err
	}

	opts := &opentype.FaceOptions{Size: spec.Size, DPI: spec.DPI, Hinting: font.HintingFull}

	switch strings.ToLower(filepath.Ext(spec.Path)) {
	case ".ttc", ".otc":
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font collection: %w", err)
		}
		if coll.NumFonts() == 0 {
			return nil, fmt.Errorf("font collection %s is empty", spec.Path)
		}
		f, err := coll.Font(0)
		if err != nil {
			return nil, fmt.Errorf("failed to read font 0 of collection: %w", err)
		}
		return opentype.NewFace(f, opts)
	}

	ttf, ttfErr := freetype.ParseFont(data)
	if ttfErr == nil {
		return truetype.NewFace(ttf, &truetype.Options{
			Size:    spec.Size,
			DPI:     spec.DPI,
			Hinting: font.HintingFull,
		}), nil
	}
	otf, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", errors.Join(ttfErr, err))
	}
	return opentype.NewFace(otf, opts)
}

// LineMetrics is the measured extent of one line of text.
type LineMetrics struct {
	Text string
	// Width is the horizontal extent from the pen origin.
	Width int
	// Height is the vertical ink extent, used as the line advance.
	Height int
	// Top is the ink top relative to the baseline (negative above it).
	Top int
}

// Layout is the geometry of a rasterization: per-line metrics and the
// canvas size including padding.
type Layout struct {
	Font    string
	Padding int
	Lines   []LineMetrics
	Width   int
	Height  int
}

// MeasureLayout splits text on newlines and measures every line with face.
// A line without ink (empty or spaces only) takes the face's ascent plus
// descent so that it still occupies a row.
func MeasureLayout(face font.Face, text string, padding int) Layout {
	metrics := face.Metrics()
	blankTop := -metrics.Ascent.Ceil()
	blankHeight := metrics.Ascent.Ceil() + metrics.Descent.Ceil()

	lines := strings.Split(text, "\n")
	layout := Layout{Padding: padding, Lines: make([]LineMetrics, 0, len(lines))}

	maxWidth, totalHeight := 0, 0
	for _, line := range lines {
		bounds, advance := font.BoundString(face, line)
		lm := LineMetrics{
			Text:  line,
			Width: max(advance.Ceil(), bounds.Max.X.Ceil(), 0),
		}
		if bounds.Max.Y > bounds.Min.Y {
			lm.Top = bounds.Min.Y.Floor()
			lm.Height = bounds.Max.Y.Ceil() - lm.Top
		} else {
			lm.Top = blankTop
			lm.Height = blankHeight
		}
		maxWidth = max(maxWidth, lm.Width)
		totalHeight += lm.Height
		layout.Lines = append(layout.Lines, lm)
	}

	layout.Width = maxWidth + 2*padding
	layout.Height = totalHeight + 2*padding
	return layout
}

// ParseHexColor parses "#rrggbb", "rrggbb" or "#rgb" into an opaque color.
func ParseHexColor(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}, nil
}

// Rasterizer renders text onto a bitmap. Like Converter it only holds
// configuration and may be shared between goroutines; each call resolves
// and closes its own font face.
type Rasterizer struct {
	Font       FontSpec
	Padding    int
	Background color.Color
	Foreground color.Color
	MaxPixels  int

	fallbacks []FaceLoader
	logger    *slog.Logger
}

// RasterizerOption is a functional option for configuring a Rasterizer.
type RasterizerOption func(*Rasterizer)

// NewRasterizer creates a new Rasterizer with the given options.
// Default values: size 10pt at 72 DPI, Padding=5, white on #2C3E50,
// MaxPixels=64Mpx, fallbacks Go Mono then basicfont.
func NewRasterizer(opts ...RasterizerOption) *Rasterizer {
	r := &Rasterizer{
		Font:       FontSpec{Size: DefaultFontSize, DPI: DefaultDPI},
		Padding:    DefaultPadding,
		Background: DefaultBackground,
		Foreground: DefaultForeground,
		MaxPixels:  DefaultMaxPixels,
		fallbacks:  DefaultFallbacks(),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// WithFont sets the preferred font.
func WithFont(spec FontSpec) RasterizerOption {
	return func(r *Rasterizer) {
		r.Font = spec
	}
}

// WithPadding sets the margin around the text.
func WithPadding(padding int) RasterizerOption {
	return func(r *Rasterizer) {
		r.Padding = padding
	}
}

// WithColors sets the background and text colors.
func WithColors(background, foreground color.Color) RasterizerOption {
	return func(r *Rasterizer) {
		r.Background = background
		r.Foreground = foreground
	}
}

// WithMaxPixels caps the canvas area; larger layouts fail with a
// RasterizationError.
func WithMaxPixels(n int) RasterizerOption {
	return func(r *Rasterizer) {
		r.MaxPixels = n
	}
}

// WithFallbackFonts replaces the fallback chain. Passing nothing disables
// fallbacks entirely.
func WithFallbackFonts(loaders ...FaceLoader) RasterizerOption {
	return func(r *Rasterizer) {
		r.fallbacks = append([]FaceLoader(nil), loaders...)
	}
}

// WithLogger sets the logger used to report font fallbacks.
func WithLogger(logger *slog.Logger) RasterizerOption {
	return func(r *Rasterizer) {
		r.logger = logger
	}
}

// ResolveFace returns the first face that loads: the requested font, then
// each fallback in order. The caller must Close the face.
func (r *Rasterizer) ResolveFace() (font.Face, string, error) {
	spec := r.Font.withDefaults()

	var errs []error
	if spec.Path != "" {
		face, err := LoadFontFace(spec)
		if err == nil {
			return face, filepath.Base(spec.Path), nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", spec.Path, err))
	}

	for _, fb := range r.fallbacks {
		face, err := fb.Load(spec)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", fb.Name, err))
			continue
		}
		if spec.Path != "" {
			r.logger.Warn("font unavailable, using fallback",
				"requested", spec.Path, "fallback", fb.Name, "error", errs[0])
		}
		return face, fb.Name, nil
	}

	if len(errs) == 0 {
		errs = append(errs, errors.New("no font requested and no fallbacks configured"))
	}
	return nil, "", &FontUnavailableError{Font: spec.Path, Err: errors.Join(errs...)}
}

// Measure resolves the font and returns the layout text would get.
func (r *Rasterizer) Measure(text string) (Layout, error) {
	face, name, err := r.ResolveFace()
	if err != nil {
		return Layout{}, err
	}
	defer face.Close()

	layout := MeasureLayout(face, text, r.Padding)
	layout.Font = name
	return layout, nil
}

// Render lays text out and paints it. It returns either a complete image
// or an error: *FontUnavailableError when no font resolves,
// *RasterizationError for anything that goes wrong after that.
func (r *Rasterizer) Render(text string) (*image.RGBA, error) {
	face, name, err := r.ResolveFace()
	if err != nil {
		return nil, err
	}
	defer face.Close()

	layout := MeasureLayout(face, text, r.Padding)
	layout.Font = name
	return r.paint(face, layout)
}

func (r *Rasterizer) paint(face font.Face, layout Layout) (canvas *image.RGBA, err error) {
	if layout.Width <= 0 || layout.Height <= 0 {
		return nil, &RasterizationError{
			Err: fmt.Errorf("empty canvas %dx%d", layout.Width, layout.Height),
		}
	}
	if r.MaxPixels > 0 && int64(layout.Width)*int64(layout.Height) > int64(r.MaxPixels) {
		return nil, &RasterizationError{
			Err: fmt.Errorf("canvas %dx%d exceeds %d pixels", layout.Width, layout.Height, r.MaxPixels),
		}
	}

	defer func() {
		if p := recover(); p != nil {
			canvas = nil
			err = &RasterizationError{Err: fmt.Errorf("paint: %v", p)}
		}
	}()

	canvas = image.NewRGBA(image.Rect(0, 0, layout.Width, layout.Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(r.Background), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(r.Foreground),
		Face: face,
	}
	y := layout.Padding
	for _, line := range layout.Lines {
		d.Dot = fixed.P(layout.Padding, y-line.Top)
		d.DrawString(line.Text)
		y += line.Height
	}

	return canvas, nil
}

// Render rasterizes text with the default colors and padding, preferring
// the font in spec.
func Render(text string, spec FontSpec) (*image.RGBA, error) {
	return NewRasterizer(WithFont(spec)).Render(text)
}
