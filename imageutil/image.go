// Package imageutil holds the image plumbing behind the ASCII converter:
// decoding with format sniffing, resizing, luminance conversion and
// encoding. Everything here is pure Go.
package imageutil

import (
	"image"
	"image/color"
	"image/draw"
)

// RGB represents a color in the RGB color space with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// RGBAImage is the full-color working image of the pipeline.
type RGBAImage struct {
	*image.RGBA
}

// NewRGBAImage creates a new RGBAImage with the specified dimensions.
func NewRGBAImage(width, height int) *RGBAImage {
	return &RGBAImage{
		RGBA: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// RGBAImageFromImage copies any image.Image into an opaque RGBAImage
// anchored at the origin. Colors are taken straight (non-premultiplied)
// and alpha is dropped, so a half-transparent white pixel stays white.
// The source is left untouched.
func RGBAImageFromImage(img image.Image) *RGBAImage {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	straight, ok := img.(*image.NRGBA)
	if !ok {
		straight = image.NewNRGBA(image.Rect(0, 0, width, height))
		draw.Draw(straight, straight.Bounds(), img, bounds.Min, draw.Src)
		bounds = straight.Bounds()
	}

	rgba := NewRGBAImage(width, height)
	for y := 0; y < height; y++ {
		src := straight.Pix[straight.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		dst := rgba.Pix[y*rgba.Stride : y*rgba.Stride+4*width]
		copy(dst, src[:4*width])
		for i := 3; i < len(dst); i += 4 {
			dst[i] = 0xff
		}
	}
	return rgba
}

// Width returns the image width.
func (img *RGBAImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *RGBAImage) Height() int {
	return img.Bounds().Dy()
}

// GetRGB returns the RGB value at (x, y).
func (img *RGBAImage) GetRGB(x, y int) RGB {
	c := img.RGBAAt(x, y)
	return RGB{R: c.R, G: c.G, B: c.B}
}

// SetRGB sets the RGB value at (x, y).
func (img *RGBAImage) SetRGB(x, y int, c RGB) {
	img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
}

// GrayImage is a single-channel 8-bit luminance image.
type GrayImage struct {
	*image.Gray
}

// NewGrayImage creates a new GrayImage with the specified dimensions.
func NewGrayImage(width, height int) *GrayImage {
	return &GrayImage{
		Gray: image.NewGray(image.Rect(0, 0, width, height)),
	}
}

// Width returns the image width.
func (img *GrayImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *GrayImage) Height() int {
	return img.Bounds().Dy()
}

// Pixels returns the intensities in row-major order without stride
// padding. The slice is a copy.
func (img *GrayImage) Pixels() []uint8 {
	width, height := img.Width(), img.Height()
	pix := make([]uint8, 0, width*height)
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width]
		pix = append(pix, row...)
	}
	return pix
}
