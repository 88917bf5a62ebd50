// Package session holds the state the img2ascii command works on: the
// selected source image and the most recent art. It replaces a global
// "current image" with an explicit value passed to each operation.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/wbrown/img2ascii"
	"github.com/wbrown/img2ascii/imageutil"
	"github.com/wbrown/img2ascii/internal/config"
)

var (
	// ErrNoSource is returned when an operation needs a selected image.
	ErrNoSource = errors.New("session: no image selected")
	// ErrNoArt is returned when there is no generated art to copy or save.
	ErrNoArt = errors.New("session: no ascii art generated")
)

// Clipboard receives the fenced art.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// SystemClipboard writes to the OS clipboard.
var SystemClipboard Clipboard = systemClipboard{}

// Session is safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	cfg    config.Config
	source string
	art    img2ascii.Block

	clipboard Clipboard
	logger    *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithClipboard replaces the system clipboard.
func WithClipboard(c Clipboard) Option {
	return func(s *Session) {
		s.clipboard = c
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New creates a session from a copy of cfg. A nil cfg means defaults.
func New(cfg *config.Config, opts ...Option) *Session {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	s := &Session{
		cfg:       *cfg,
		clipboard: SystemClipboard,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns a copy of the session configuration, including the
// last selected image.
func (s *Session) Config() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Select makes path the source image. The file must exist; it is not
// decoded until needed. Any previous art is discarded.
func (s *Session) Select(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = path
	s.cfg.LastImage = path
	s.art = nil
	s.logger.Debug("image selected", "path", path, "size", info.Size())
	return nil
}

// Source returns the selected image path, or "".
func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// DetectWidth suggests a target width from the source image's pixel
// width. Only the image header is read.
func (s *Session) DetectWidth() (int, error) {
	source := s.Source()
	if source == "" {
		return 0, ErrNoSource
	}

	cfg, format, err := imageutil.DecodeConfig(source)
	if err != nil {
		return 0, &img2ascii.ImageDecodeError{Source: source, Err: err}
	}
	width := img2ascii.SuggestWidth(cfg.Width)
	s.logger.Debug("width detected",
		"path", source, "format", format, "pixels", cfg.Width, "suggested", width)
	return width, nil
}

// Generate converts the source image at width characters, overwrites the
// text artifact and keeps the result as the current art.
func (s *Session) Generate(width int) (img2ascii.Block, error) {
	if err := img2ascii.ValidateWidth(width); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == "" {
		return nil, ErrNoSource
	}

	conv, err := s.cfg.Converter()
	if err != nil {
		return nil, err
	}
	conv.TargetWidth = width

	block, err := conv.ConvertFile(s.source)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(s.cfg.TextOutput, []byte(block.String()), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", s.cfg.TextOutput, err)
	}
	s.art = block
	s.logger.Info("ascii art generated",
		"source", s.source, "width", block.Width(), "lines", block.Height(),
		"output", s.cfg.TextOutput)
	return block, nil
}

// SetArt replaces the current art, e.g. with text loaded from a file.
func (s *Session) SetArt(block img2ascii.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.art = block
}

// Art returns the current art, or nil.
func (s *Session) Art() img2ascii.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.art
}

// CopyToClipboard writes the current art as a fenced code block.
func (s *Session) CopyToClipboard() error {
	art := s.Art()
	if len(art) == 0 {
		return ErrNoArt
	}
	if err := s.clipboard.WriteAll(img2ascii.FormatCodeBlock(art.String())); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	s.logger.Info("ascii art copied to clipboard", "lines", art.Height())
	return nil
}

// SaveImage rasterizes the current art and writes the image artifact.
// The encoder follows the extension of the configured path (.png, .jpg,
// .gif). It returns the path written.
func (s *Session) SaveImage() (string, error) {
	s.mu.Lock()
	art, cfg := s.art, s.cfg
	s.mu.Unlock()

	if len(art) == 0 {
		return "", ErrNoArt
	}

	opts, err := cfg.RasterizerOptions()
	if err != nil {
		return "", err
	}
	opts = append(opts, img2ascii.WithLogger(s.logger))

	img, err := img2ascii.NewRasterizer(opts...).Render(art.String())
	if err != nil {
		return "", err
	}
	if err := imageutil.SaveImage(img, cfg.ImageOutput); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", cfg.ImageOutput, err)
	}
	s.logger.Info("ascii image saved",
		"path", cfg.ImageOutput, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return cfg.ImageOutput, nil
}
