package imageutil

// Luminance returns the 8-bit ITU-R BT.601 luma of an RGB triple:
// Y = 0.299*R + 0.587*G + 0.114*B, rounded to the nearest integer.
func Luminance(r, g, b uint8) uint8 {
	lum := (299*int(r) + 587*int(g) + 114*int(b) + 500) / 1000
	if lum > 255 {
		lum = 255
	}
	return uint8(lum)
}

// ToGrayscale converts an RGBA image to a new single-channel image using
// Luminance. Alpha is ignored.
func ToGrayscale(img *RGBAImage) *GrayImage {
	width, height := img.Width(), img.Height()
	gray := NewGrayImage(width, height)

	for y := 0; y < height; y++ {
		src := img.Pix[y*img.Stride:]
		dst := gray.Pix[y*gray.Stride:]
		for x := 0; x < width; x++ {
			i := x * 4
			dst[x] = Luminance(src[i], src[i+1], src[i+2])
		}
	}

	return gray
}
