// Package config loads and saves the settings of the img2ascii command.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/wbrown/img2ascii"
	"github.com/wbrown/img2ascii/imageutil"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "img2ascii.json"

// ErrMalformed is returned by Load, together with the defaults, when the
// file exists but is not valid JSON.
var ErrMalformed = errors.New("malformed config file")

// Config mirrors img2ascii.json.
type Config struct {
	Width         int     `json:"width"`
	ScaleFactor   float64 `json:"scale_factor"`
	Interpolation string  `json:"interpolation"`

	TextOutput  string `json:"text_output"`
	ImageOutput string `json:"image_output"`

	FontPath   string  `json:"font_path"`
	FontSize   float64 `json:"font_size"`
	Background string  `json:"background"`
	Foreground string  `json:"foreground"`

	// LastImage is the most recently selected source image.
	LastImage string `json:"last_image,omitempty"`
}

// NewDefault returns the configuration used when no file exists or it
// cannot be parsed.
func NewDefault() *Config {
	return &Config{
		Width:         img2ascii.DefaultWidth,
		ScaleFactor:   img2ascii.DefaultScaleFactor,
		Interpolation: imageutil.InterpolationCubic.String(),
		TextOutput:    "output.txt",
		ImageOutput:   "ascii_image.png",
		FontPath:      "mingliu.ttc",
		FontSize:      img2ascii.DefaultFontSize,
		Background:    "#2C3E50",
		Foreground:    "#FFFFFF",
	}
}

// Load reads filename. Fields missing from the file keep their defaults
// and a missing file yields NewDefault. A malformed file also yields
// NewDefault, along with an error wrapping ErrMalformed.
func Load(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefault(), nil
		}
		return nil, err
	}
	defer file.Close()

	cfg := NewDefault()
	if err := json.NewDecoder(file).Decode(cfg); err != nil {
		return NewDefault(), fmt.Errorf("%w %s: %w", ErrMalformed, filename, err)
	}

	return cfg, nil
}

// Save writes cfg to filename as indented JSON.
func Save(cfg *Config, filename string) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}

// Validate checks the values a conversion or rasterization depends on.
func (c *Config) Validate() error {
	var errs []error
	if err := img2ascii.ValidateWidth(c.Width); err != nil {
		errs = append(errs, err)
	}
	if c.ScaleFactor <= 0 {
		errs = append(errs, fmt.Errorf("scale_factor must be positive, got %v", c.ScaleFactor))
	}
	if _, err := imageutil.ParseInterpolation(c.Interpolation); err != nil {
		errs = append(errs, err)
	}
	if c.FontSize <= 0 {
		errs = append(errs, fmt.Errorf("font_size must be positive, got %v", c.FontSize))
	}
	if _, err := img2ascii.ParseHexColor(c.Background); err != nil {
		errs = append(errs, fmt.Errorf("background: %w", err))
	}
	if _, err := img2ascii.ParseHexColor(c.Foreground); err != nil {
		errs = append(errs, fmt.Errorf("foreground: %w", err))
	}
	if c.TextOutput == "" {
		errs = append(errs, errors.New("text_output is empty"))
	}
	if c.ImageOutput == "" {
		errs = append(errs, errors.New("image_output is empty"))
	}
	return errors.Join(errs...)
}

// Converter builds the forward pipeline described by c.
func (c *Config) Converter() (*img2ascii.Converter, error) {
	interp, err := imageutil.ParseInterpolation(c.Interpolation)
	if err != nil {
		return nil, err
	}
	return img2ascii.NewConverter(
		img2ascii.WithTargetWidth(c.Width),
		img2ascii.WithScaleFactor(c.ScaleFactor),
		img2ascii.WithInterpolation(interp),
	), nil
}

// RasterizerOptions returns the font and color options described by c.
func (c *Config) RasterizerOptions() ([]img2ascii.RasterizerOption, error) {
	bg, err := img2ascii.ParseHexColor(c.Background)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	fg, err := img2ascii.ParseHexColor(c.Foreground)
	if err != nil {
		return nil, fmt.Errorf("foreground: %w", err)
	}
	return []img2ascii.RasterizerOption{
		img2ascii.WithFont(img2ascii.FontSpec{Path: c.FontPath, Size: c.FontSize}),
		img2ascii.WithColors(bg, fg),
	}, nil
}
