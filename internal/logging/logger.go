package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"wallcrop/internal/config"
)

// LogFileName is the file written under paths.log_dir.
const LogFileName = "wallcrop.log"

// Options describes logger construction parameters.
type Options struct {
	Level string
	// Format selects the console renderer: "console" or "json".
	Format string
	// Writer receives console output. Defaults to os.Stderr.
	Writer io.Writer
	// Color forces ANSI colours on the console renderer.
	Color bool
	// LogFile, when set, additionally receives every record as JSON at debug level.
	LogFile     string
	Development bool
}

// New constructs a slog logger using the provided options. The returned
// closer releases the log file, if any.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	addSource := opts.Development || level <= slog.LevelDebug

	var console slog.Handler
	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", "console":
		console = newPrettyHandler(writer, levelVar, addSource, opts.Color)
	case "json":
		console = newJSONHandler(writer, levelVar, addSource)
	default:
		return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	if strings.TrimSpace(opts.LogFile) == "" {
		return slog.New(console), nopCloser{}, nil
	}
	file, err := openLogFile(opts.LogFile)
	if err != nil {
		return nil, nil, err
	}
	fileHandler := newJSONHandler(file, slog.LevelDebug, true)
	return slog.New(newTeeHandler(console, fileHandler)), file, nil
}

// NewFromConfig creates a logger using application config. Colours are
// enabled when stderr is a terminal.
func NewFromConfig(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	opts := Options{
		Level:  "info",
		Format: "console",
		Writer: os.Stderr,
		Color:  isTerminal(os.Stderr),
	}
	if cfg != nil {
		opts.Level = cfg.Logging.Level
		opts.Format = cfg.Logging.Format
		if cfg.Paths.LogDir != "" {
			opts.LogFile = filepath.Join(cfg.Paths.LogDir, LogFileName)
		}
	}
	return New(opts)
}

func isTerminal(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
