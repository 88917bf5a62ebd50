package img2ascii

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ImageDecodeError reports a source image that could not be read or is
// not in a supported format.
type ImageDecodeError struct {
	Source string
	Err    error
}

func (e *ImageDecodeError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("cannot decode image: %v", e.Err)
	}
	return fmt.Sprintf("cannot decode image %s: %v", e.Source, e.Err)
}

func (e *ImageDecodeError) Unwrap() error { return e.Err }

// ConversionError wraps any failure of the forward pipeline. Decode
// failures arrive as a wrapped *ImageDecodeError.
type ConversionError struct {
	Source string
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("ascii conversion failed: %v", e.Err)
	}
	return fmt.Sprintf("ascii conversion of %s failed: %v", e.Source, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// FontUnavailableError means no font, including every fallback, could be
// loaded for rasterization.
type FontUnavailableError struct {
	Font string
	Err  error
}

func (e *FontUnavailableError) Error() string {
	return fmt.Sprintf("no usable font (requested %q): %v", e.Font, e.Err)
}

func (e *FontUnavailableError) Unwrap() error { return e.Err }

// RasterizationError wraps a measurement or paint failure of the inverse
// pipeline.
type RasterizationError struct {
	Err error
}

func (e *RasterizationError) Error() string {
	return fmt.Sprintf("rasterization failed: %v", e.Err)
}

func (e *RasterizationError) Unwrap() error { return e.Err }

// errNotPositive is the cause of an InvalidWidthError for a number <= 0.
var errNotPositive = errors.New("width must be a positive integer")

// InvalidWidthError reports a target width that is not a positive integer.
type InvalidWidthError struct {
	Input string
	Err   error
}

func (e *InvalidWidthError) Error() string {
	cause := e.Err
	if cause == nil {
		cause = errNotPositive
	}
	return fmt.Sprintf("invalid width %q: %v", e.Input, cause)
}

func (e *InvalidWidthError) Unwrap() error { return e.Err }

// ParseWidth parses user input as a target width.
func ParseWidth(s string) (int, error) {
	s = strings.TrimSpace(s)
	w, err := strconv.Atoi(s)
	if err != nil {
		return 0, &InvalidWidthError{Input: s, Err: err}
	}
	if err := ValidateWidth(w); err != nil {
		return 0, err
	}
	return w, nil
}

// ValidateWidth returns an *InvalidWidthError unless w is positive.
func ValidateWidth(w int) error {
	if w <= 0 {
		return &InvalidWidthError{Input: strconv.Itoa(w), Err: errNotPositive}
	}
	return nil
}
