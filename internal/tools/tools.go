package tools

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"wallcrop/internal/config"
	"wallcrop/internal/logging"
	"wallcrop/internal/services"
)

// Option configures a Toolbox.
type Option func(*Toolbox)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(t *Toolbox) {
		if exec != nil {
			t.exec = exec
		}
	}
}

// WithEditorFlags prepends flags to every editor invocation.
func WithEditorFlags(flags ...string) Option {
	return func(t *Toolbox) {
		t.editorFlags = append(t.editorFlags, flags...)
	}
}

// Toolbox runs the configured external tools.
type Toolbox struct {
	cfg         config.Tools
	exec        Executor
	logger      *slog.Logger
	optimizers  *Registry
	editorFlags []string
}

// New constructs a Toolbox over the configured binaries.
func New(cfg config.Tools, logger *slog.Logger, opts ...Option) *Toolbox {
	t := &Toolbox{
		cfg:        cfg,
		exec:       CommandExecutor{},
		logger:     logging.NewComponentLogger(logger, "tools"),
		optimizers: NewRegistry(cfg),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Executor exposes the executor so other process clients share it.
func (t *Toolbox) Executor() Executor { return t.exec }

// Upscale enlarges src by factor into dst.
func (t *Toolbox) Upscale(ctx context.Context, src, dst string, factor int) error {
	if factor < 2 {
		return services.Wrap(services.ErrProtocol, "upscale", "validate", fmt.Sprintf("factor %d needs no upscaler", factor), nil)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create upscale directory: %w", err)
	}
	args := []string{"-i", src, "-s", strconv.Itoa(factor), "-o", dst}
	return t.run(ctx, t.cfg.Upscaler, args)
}

// Optimize writes an optimized copy of src to dst, choosing the optimizer
// from dst's extension.
func (t *Toolbox) Optimize(ctx context.Context, src, dst string) error {
	opt, err := t.optimizers.For(dst)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	logging.WithContext(ctx, t.logger).Debug("optimizing", logging.String("format", opt.Format()))
	return t.run(ctx, opt.Binary(), opt.Args(src, dst))
}

// Preview hands paths to the crop editor. An empty list is a no-op.
func (t *Toolbox) Preview(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	if t.cfg.Editor == "" {
		t.logger.Info("no editor configured; review these images manually", logging.Int("count", len(paths)))
		return nil
	}
	args := append(append([]string(nil), t.editorFlags...), paths...)
	return t.run(ctx, t.cfg.Editor, args)
}

func (t *Toolbox) run(ctx context.Context, binary string, args []string) error {
	t.logger.Debug("running tool", logging.String("binary", binary), logging.Any("args", args))
	log := logging.WithContext(ctx, t.logger)
	forward := func(line string) {
		log.Debug(line, logging.String("binary", binary))
	}
	return t.exec.Run(ctx, binary, args, forward, forward)
}
