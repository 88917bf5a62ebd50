package img2ascii

import (
	"fmt"
	"image"
	"io"

	"github.com/wbrown/img2ascii/imageutil"
)

// Converter holds the configuration of the forward pipeline. It is
// immutable after construction and safe for concurrent use; every call
// works on its own copy of the image.
type Converter struct {
	// TargetWidth is the output width in characters.
	TargetWidth int
	// ScaleFactor is the vertical compression applied when resizing.
	ScaleFactor float64
	// Interpolation selects the resize kernel.
	Interpolation imageutil.Interpolation
	// Sharpen applies a mild sharpening pass to the luminance image
	// before quantization.
	Sharpen bool

	gradient string
}

// ConverterOption is a functional option for configuring a Converter.
type ConverterOption func(*Converter)

// NewConverter creates a new Converter with the given options.
// Default values: TargetWidth=100, ScaleFactor=0.55,
// Interpolation=InterpolationCubic, Gradient="@%#*+=-:. ", no sharpening.
func NewConverter(opts ...ConverterOption) *Converter {
	c := &Converter{
		TargetWidth:   DefaultWidth,
		ScaleFactor:   DefaultScaleFactor,
		Interpolation: imageutil.InterpolationCubic,
		gradient:      Gradient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTargetWidth sets the target width in characters.
func WithTargetWidth(width int) ConverterOption {
	return func(c *Converter) {
		c.TargetWidth = width
	}
}

// WithScaleFactor sets the vertical compression factor.
func WithScaleFactor(factor float64) ConverterOption {
	return func(c *Converter) {
		c.ScaleFactor = factor
	}
}

// WithInterpolation sets the resize kernel.
func WithInterpolation(interp imageutil.Interpolation) ConverterOption {
	return func(c *Converter) {
		c.Interpolation = interp
	}
}

// WithSharpen enables or disables the sharpening pass.
func WithSharpen(sharpen bool) ConverterOption {
	return func(c *Converter) {
		c.Sharpen = sharpen
	}
}

// WithGradient replaces the glyph ramp. It is validated on every
// conversion, so an unusable ramp surfaces as a ConversionError.
func WithGradient(gradient string) ConverterOption {
	return func(c *Converter) {
		c.gradient = gradient
	}
}

// Gradient returns the glyph ramp in use.
func (c *Converter) Gradient() string {
	return c.gradient
}

// ConvertFile converts the image at path. The width is validated before
// the file is opened.
func (c *Converter) ConvertFile(path string) (Block, error) {
	if err := ValidateWidth(c.TargetWidth); err != nil {
		return nil, err
	}

	img, err := imageutil.LoadImage(path)
	if err != nil {
		return nil, &ConversionError{
			Source: path,
			Err:    &ImageDecodeError{Source: path, Err: err},
		}
	}
	return c.convert(img, path)
}

// ConvertReader converts an encoded image read from r.
func (c *Converter) ConvertReader(r io.Reader) (Block, error) {
	if err := ValidateWidth(c.TargetWidth); err != nil {
		return nil, err
	}
	return c.convertReader(r, "")
}

func (c *Converter) convertReader(r io.Reader, source string) (Block, error) {
	img, _, err := imageutil.DecodeImage(r)
	if err != nil {
		return nil, &ConversionError{
			Source: source,
			Err:    &ImageDecodeError{Source: source, Err: err},
		}
	}
	return c.convert(img, source)
}

// ConvertImage converts an already decoded image.
func (c *Converter) ConvertImage(img image.Image) (Block, error) {
	if err := ValidateWidth(c.TargetWidth); err != nil {
		return nil, err
	}
	return c.convert(imageutil.RGBAImageFromImage(img), "")
}

func (c *Converter) convert(img *imageutil.RGBAImage, source string) (Block, error) {
	if err := ValidateGradient(c.gradient); err != nil {
		return nil, &ConversionError{Source: source, Err: err}
	}

	gray, err := MapLuminance(img, c.TargetWidth, c.ScaleFactor, c.Interpolation)
	if err != nil {
		return nil, &ConversionError{Source: source, Err: fmt.Errorf("map luminance: %w", err)}
	}
	if c.Sharpen {
		gray = imageutil.SharpenGray(gray)
	}

	return QuantizeGray(gray, c.gradient), nil
}

// Convert converts the image at path into a Block width characters wide
// using the default configuration.
func Convert(path string, width int) (Block, error) {
	return NewConverter(WithTargetWidth(width)).ConvertFile(path)
}

// ConvertReader converts an encoded image read from r into a Block width
// characters wide using the default configuration.
func ConvertReader(r io.Reader, width int) (Block, error) {
	return NewConverter(WithTargetWidth(width)).ConvertReader(r)
}
