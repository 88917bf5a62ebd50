package imageutil

import (
	"fmt"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationCubic uses Catmull-Rom, a bicubic kernel that holds up
	// for both down and up scaling. This is the default.
	InterpolationCubic Interpolation = iota

	// InterpolationLinear uses bilinear interpolation.
	InterpolationLinear

	// InterpolationNearest uses nearest-neighbor interpolation.
	// Fastest, and the only method that never invents new intensities.
	InterpolationNearest

	// InterpolationLanczos uses a Lanczos3 kernel via nfnt/resize.
	InterpolationLanczos
)

var interpolationNames = map[Interpolation]string{
	InterpolationCubic:   "cubic",
	InterpolationLinear:  "linear",
	InterpolationNearest: "nearest",
	InterpolationLanczos: "lanczos",
}

// String returns the flag/config name of the interpolation.
func (i Interpolation) String() string {
	if name, ok := interpolationNames[i]; ok {
		return name
	}
	return fmt.Sprintf("Interpolation(%d)", int(i))
}

// ParseInterpolation maps a name such as "cubic" or "nearest" back to an
// Interpolation. Matching is case-insensitive.
func ParseInterpolation(name string) (Interpolation, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for interp, n := range interpolationNames {
		if n == name {
			return interp, nil
		}
	}
	return InterpolationCubic, fmt.Errorf("unknown interpolation %q", name)
}

// Resize returns a new RGBA image of the given dimensions. The source is
// not modified.
func Resize(img *RGBAImage, width, height int, interp Interpolation) *RGBAImage {
	if interp == InterpolationLanczos {
		scaled := resize.Resize(uint(width), uint(height), img.RGBA, resize.Lanczos3)
		return RGBAImageFromImage(scaled)
	}

	dst := NewRGBAImage(width, height)
	scalerFor(interp).Scale(dst.RGBA, dst.Bounds(), img.RGBA, img.Bounds(), draw.Src, nil)
	return dst
}

func scalerFor(interp Interpolation) draw.Scaler {
	switch interp {
	case InterpolationLinear:
		return draw.BiLinear
	case InterpolationNearest:
		return draw.NearestNeighbor
	default:
		return draw.CatmullRom
	}
}
