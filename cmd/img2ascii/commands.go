package main

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"github.com/wbrown/img2ascii"
	"github.com/wbrown/img2ascii/internal/config"
	"github.com/wbrown/img2ascii/internal/session"
)

func newConvertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [flags] <image>...",
		Short: "Convert one or more images to ASCII art",
		Long: "Convert images to ASCII art. With a single input the art is written to " +
			"the configured text output. With several, each input gets <input>.txt " +
			"(and <input>.ascii.png with --png) next to it and the conversions run " +
			"concurrently.",
		Args: cobra.MinimumNArgs(1),
		RunE: runConvert,
	}

	cmd.Flags().String("width", "", "target width in characters (\"auto\" suggests one from the image)")
	cmd.Flags().Float64("scale", img2ascii.DefaultScaleFactor, "vertical compression factor")
	cmd.Flags().String("interp", "cubic", "resize kernel: cubic, linear, nearest or lanczos")
	cmd.Flags().StringP("output", "o", "", "text output path (single input only)")
	cmd.Flags().Bool("stdout", false, "print the art to stdout")
	cmd.Flags().Bool("copy", false, "copy the art to the clipboard as a code block")
	cmd.Flags().Bool("png", false, "also rasterize the art to the image output")
	cmd.Flags().Int("jobs", 4, "maximum concurrent conversions")

	return cmd
}

// convertOptions are the convert flags resolved against the config.
type convertOptions struct {
	width  string
	stdout bool
	copy   bool
	png    bool
	jobs   int
}

func runConvert(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	base := *cfg

	if flags.Changed("scale") {
		base.ScaleFactor, _ = flags.GetFloat64("scale")
	}
	if flags.Changed("interp") {
		base.Interpolation, _ = flags.GetString("interp")
	}
	if output, _ := flags.GetString("output"); output != "" {
		if len(args) > 1 {
			return errors.New("--output cannot be used with several inputs")
		}
		base.TextOutput = output
	}

	var opts convertOptions
	opts.width, _ = flags.GetString("width")
	opts.stdout, _ = flags.GetBool("stdout")
	opts.copy, _ = flags.GetBool("copy")
	opts.png, _ = flags.GetBool("png")
	opts.jobs, _ = flags.GetInt("jobs")

	if opts.copy && len(args) > 1 {
		return errors.New("--copy cannot be used with several inputs")
	}
	if err := base.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if len(args) == 1 {
		art, err := convertOne(&base, args[0], opts)
		if err != nil {
			return err
		}
		if opts.stdout {
			fmt.Fprintln(cmd.OutOrStdout(), art)
		}
		return nil
	}

	texts, images, err := outputPaths(args)
	if err != nil {
		return err
	}

	jobs := max(opts.jobs, 1)
	sem := make(chan struct{}, jobs)
	results := make([]img2ascii.Block, len(args))
	errs := make([]error, len(args))

	var wg sync.WaitGroup
	for i, input := range args {
		wg.Add(1)
		go func(i int, input string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			own := base
			own.TextOutput = texts[i]
			own.ImageOutput = images[i]

			art, err := convertOne(&own, input, opts)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", input, err)
				return
			}
			results[i] = art
		}(i, input)
	}
	wg.Wait()

	if opts.stdout {
		for i, art := range results {
			if art == nil {
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "==> %s <==\n%s\n", args[i], art)
		}
	}
	return errors.Join(errs...)
}

// outputPaths names the artifacts of each input when several are converted
// at once. The input's extension is kept so pic.png and pic.bmp do not
// collide; naming the same file twice is an error.
func outputPaths(inputs []string) (texts, images []string, err error) {
	seen := make(map[string]string, len(inputs))
	for _, input := range inputs {
		key := filepath.Clean(input)
		if prev, ok := seen[key]; ok {
			return nil, nil, fmt.Errorf("%s and %s are the same input", prev, input)
		}
		seen[key] = input
		texts = append(texts, key+".txt")
		images = append(images, key+".ascii.png")
	}
	return texts, images, nil
}

// convertOne runs a single input through a session of its own.
func convertOne(c *config.Config, input string, opts convertOptions) (img2ascii.Block, error) {
	logger := slog.Default().With("input", input)
	s := session.New(c, session.WithLogger(logger), session.WithClipboard(clipboard))
	if err := s.Select(input); err != nil {
		return nil, err
	}

	width := c.Width
	switch opts.width {
	case "":
	case "auto":
		w, err := s.DetectWidth()
		if err != nil {
			return nil, err
		}
		width = w
	default:
		w, err := img2ascii.ParseWidth(opts.width)
		if err != nil {
			return nil, err
		}
		width = w
	}

	art, err := s.Generate(width)
	if err != nil {
		return nil, err
	}
	if opts.copy {
		if err := s.CopyToClipboard(); err != nil {
			return nil, err
		}
	}
	if opts.png {
		if _, err := s.SaveImage(); err != nil {
			return nil, err
		}
	}
	return art, nil
}

func newDetectWidthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "detect-width <image>",
		Short: "Suggest a target width for an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := session.New(cfg)
			if err := s.Select(args[0]); err != nil {
				return err
			}
			width, err := s.DetectWidth()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), width)
			return nil
		},
	}
}

// loadArt reads a text file of ASCII art. Ragged rows are accepted with a
// warning since the rasterizer does not need a rectangle.
func loadArt(path string) (img2ascii.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s: %w", path, session.ErrNoArt)
	}
	art, err := img2ascii.ParseBlock(string(data))
	if err != nil {
		slog.Warn("art is not rectangular", "path", path, "error", err)
	}
	return art, nil
}

func newRenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [flags] <text-file>",
		Short: "Rasterize ASCII art into an image (.png, .jpg or .gif)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := *cfg
			flags := cmd.Flags()
			if flags.Changed("font") {
				c.FontPath, _ = flags.GetString("font")
			}
			if flags.Changed("font-size") {
				c.FontSize, _ = flags.GetFloat64("font-size")
			}
			if output, _ := flags.GetString("output"); output != "" {
				c.ImageOutput = output
			}
			if err := c.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			art, err := loadArt(args[0])
			if err != nil {
				return err
			}
			s := session.New(&c)
			s.SetArt(art)
			path, err := s.SaveImage()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().String("font", "", "TrueType/OpenType font or collection")
	cmd.Flags().Float64("font-size", img2ascii.DefaultFontSize, "font size in points")
	cmd.Flags().StringP("output", "o", "", "image output path")

	return cmd
}

func newCopyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "copy <text-file>",
		Short: "Copy ASCII art to the clipboard as a code block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			art, err := loadArt(args[0])
			if err != nil {
				return err
			}
			s := session.New(cfg, session.WithClipboard(clipboard))
			s.SetArt(art)
			return s.CopyToClipboard()
		},
	}
}

func newInitConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Write the current configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			if err := config.Save(cfg, path); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			slog.Info("config written", "path", path)
			return nil
		},
	}
}
