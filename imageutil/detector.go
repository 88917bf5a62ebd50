package imageutil

import "bytes"

// Format names returned by DetectFormat.
const (
	FormatUnknown = ""
	FormatJPEG    = "JPEG"
	FormatPNG     = "PNG"
	FormatGIF     = "GIF"
	FormatWebP    = "WebP"
	FormatBMP     = "BMP"
	FormatTIFF    = "TIFF"
)

// sniffLen is the number of header bytes DetectFormat needs at most.
const sniffLen = 12

var (
	pngSig     = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	tiffSigLE  = []byte{0x49, 0x49, 0x2A, 0x00}
	tiffSigBE  = []byte{0x4D, 0x4D, 0x00, 0x2A}
	gif87Sig   = []byte("GIF87a")
	gif89Sig   = []byte("GIF89a")
	riffSig    = []byte("RIFF")
	webpFourCC = []byte("WEBP")
	jpegSig    = []byte{0xFF, 0xD8, 0xFF}
	bmpSig     = []byte("BM")
)

// DetectFormat identifies the image format by examining the magic bytes.
// It returns FormatUnknown if the header matches none of the supported
// formats.
func DetectFormat(header []byte) string {
	switch {
	case bytes.HasPrefix(header, jpegSig):
		return FormatJPEG
	case bytes.HasPrefix(header, pngSig):
		return FormatPNG
	case bytes.HasPrefix(header, gif87Sig), bytes.HasPrefix(header, gif89Sig):
		return FormatGIF
	case len(header) >= 12 && bytes.HasPrefix(header, riffSig) &&
		bytes.Equal(header[8:12], webpFourCC):
		return FormatWebP
	case bytes.HasPrefix(header, tiffSigLE), bytes.HasPrefix(header, tiffSigBE):
		return FormatTIFF
	case bytes.HasPrefix(header, bmpSig):
		return FormatBMP
	}
	return FormatUnknown
}
