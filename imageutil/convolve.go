package imageutil

import "math"

// Kernel represents a convolution kernel.
type Kernel struct {
	Values [][]float64
	Width  int
	Height int
}

// NewKernel creates a new kernel from a 2D slice.
func NewKernel(values [][]float64) *Kernel {
	height := len(values)
	width := 0
	if height > 0 {
		width = len(values[0])
	}
	return &Kernel{
		Values: values,
		Width:  width,
		Height: height,
	}
}

// SharpeningKernel returns a mild 3x3 sharpening kernel. Its weights sum
// to 1 so flat regions keep their intensity.
func SharpeningKernel() *Kernel {
	return NewKernel([][]float64{
		{0, -0.5, 0},
		{-0.5, 3, -0.5},
		{0, -0.5, 0},
	})
}

// ConvolveGray applies a convolution kernel to a grayscale image and
// returns a new image. Border pixels are handled by replicating edge
// values.
func ConvolveGray(img *GrayImage, kernel *Kernel) *GrayImage {
	width, height := img.Width(), img.Height()
	dst := NewGrayImage(width, height)

	halfKW := kernel.Width / 2
	halfKH := kernel.Height / 2

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64

			for ky := 0; ky < kernel.Height; ky++ {
				for kx := 0; kx < kernel.Width; kx++ {
					sx := clampInt(x+kx-halfKW, 0, width-1)
					sy := clampInt(y+ky-halfKH, 0, height-1)

					sum += float64(img.Pix[sy*img.Stride+sx]) * kernel.Values[ky][kx]
				}
			}

			dst.Pix[y*dst.Stride+x] = clampUint8(sum)
		}
	}

	return dst
}

// SharpenGray applies SharpeningKernel to a grayscale image.
func SharpenGray(img *GrayImage) *GrayImage {
	return ConvolveGray(img, SharpeningKernel())
}

// clampInt clamps an integer to the given range.
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampUint8 clamps a float64 to [0, 255] and converts to uint8.
func clampUint8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}
