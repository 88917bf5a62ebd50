// Command img2ascii converts images to ASCII art and renders ASCII art
// back into PNG images.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/wbrown/img2ascii/internal/config"
	"github.com/wbrown/img2ascii/internal/session"
)

// cfg is loaded by setup before any subcommand runs.
var cfg *config.Config

// clipboard receives the art of convert --copy and copy.
var clipboard session.Clipboard = session.SystemClipboard

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "img2ascii",
		Short:             "Convert images to ASCII art and back",
		Version:           "0.1.0",
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		PersistentPreRunE: setup,
	}

	cmd.PersistentFlags().String("config", config.DefaultFile, "path to the JSON config file")
	cmd.PersistentFlags().String("log-level", "warn", "verbosity of logging output")
	cmd.PersistentFlags().Bool("log-as-json", false, "change logging format to JSON")

	cmd.AddCommand(
		newConvertCommand(),
		newDetectWidthCommand(),
		newRenderCommand(),
		newCopyCommand(),
		newInitConfigCommand(),
	)
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("Failed to execute command", slog.Any("error", err))
		os.Exit(1)
	}
}

// setup configures logging and loads the config file.
func setup(cmd *cobra.Command, _ []string) error {
	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return fmt.Errorf("get log-level flag: %w", err)
	}

	logAsJSON, err := cmd.Flags().GetBool("log-as-json")
	if err != nil {
		return fmt.Errorf("get log-as-json flag: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	var handler slog.Handler
	if logAsJSON {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}
	cfg, err = config.Load(path)
	if errors.Is(err, config.ErrMalformed) {
		slog.Warn("Using default configuration", "path", path, "error", err)
	} else if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Debug("config loaded", "path", path, "width", cfg.Width, "font", cfg.FontPath)

	return nil
}
