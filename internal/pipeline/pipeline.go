// Package pipeline moves new wallpapers through Upscale, Optimize, Detect and
// Preview, writing their metadata into the store.
//
// A Pipeline is scoped to one run: it owns the stage list, the run ID and
// the loaded store, and is discarded afterwards. Stages advance in lock
// step: every image finishes upscaling before any is optimized, and the
// store is saved once after detection.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"wallcrop/internal/config"
	"wallcrop/internal/detector"
	"wallcrop/internal/geometry"
	"wallcrop/internal/imageinfo"
	"wallcrop/internal/logging"
	"wallcrop/internal/services"
	"wallcrop/internal/store"
	"wallcrop/internal/textutil"
)

// Toolbox runs the external image tools.
type Toolbox interface {
	Upscale(ctx context.Context, src, dst string, factor int) error
	Optimize(ctx context.Context, src, dst string) error
	Preview(ctx context.Context, paths []string) error
}

// FaceDetector finds faces in a batch of images, one result per path in order.
type FaceDetector interface {
	Detect(ctx context.Context, paths []string) ([]detector.Result, error)
}

// Options wires a Pipeline.
type Options struct {
	Config   *config.Config
	Store    *store.Store
	Logger   *slog.Logger
	Tools    Toolbox
	Detector FaceDetector
	// Dimensions measures an image. Defaults to imageinfo.Dimensions.
	Dimensions func(path string) (uint32, uint32, error)
}

// Summary counts what a run did.
type Summary struct {
	RunID     string
	Upscaled  int
	Optimized int
	Detected  int
	Previewed int
	Skipped   int
}

// Pipeline is the state of one add run.
type Pipeline struct {
	cfg        *config.Config
	store      *store.Store
	logger     *slog.Logger
	tools      Toolbox
	detector   FaceDetector
	dimensions func(string) (uint32, uint32, error)
	ratios     []geometry.AspectRatio

	images  []Stage
	queued  map[string]struct{}
	summary Summary
}

// New validates opts and returns an empty pipeline.
func New(opts Options) (*Pipeline, error) {
	switch {
	case opts.Config == nil:
		return nil, errors.New("pipeline: config required")
	case opts.Store == nil:
		return nil, errors.New("pipeline: store required")
	case opts.Tools == nil:
		return nil, errors.New("pipeline: toolbox required")
	case opts.Detector == nil:
		return nil, errors.New("pipeline: detector required")
	}
	dims := opts.Dimensions
	if dims == nil {
		dims = imageinfo.Dimensions
	}
	return &Pipeline{
		cfg:        opts.Config,
		store:      opts.Store,
		logger:     logging.NewComponentLogger(opts.Logger, "pipeline"),
		tools:      opts.Tools,
		detector:   opts.Detector,
		dimensions: dims,
		ratios:     opts.Config.SortedResolutions(),
		queued:     make(map[string]struct{}),
		summary:    Summary{RunID: uuid.NewString()},
	}, nil
}

// Stages returns the current stage of every queued image.
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.images...)
}

// Summary reports progress so far.
func (p *Pipeline) Summary() Summary { return p.summary }

func (p *Pipeline) enqueue(key string, s Stage) {
	p.queued[key] = struct{}{}
	p.images = append(p.images, s)
}

func (p *Pipeline) isQueued(key string) bool {
	_, ok := p.queued[key]
	return ok
}

// outputPath is where src ends up in the wallpapers directory.
func (p *Pipeline) outputPath(src string) string {
	out := src
	if p.cfg.Pipeline.Format != "" {
		out = textutil.ReplaceExt(out, p.cfg.Pipeline.Format)
	}
	return textutil.WithDir(out, p.cfg.Paths.WallpapersDir)
}

// Run drives every queued image through all four stages.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	ctx = services.WithRunID(ctx, p.summary.RunID)
	started := time.Now()
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"upscale", p.UpscaleAll},
		{"optimize", p.OptimizeAll},
		{"detect", p.DetectAll},
		{"preview", p.PreviewAll},
	}
	for _, step := range steps {
		if err := step.fn(services.WithStage(ctx, step.name)); err != nil {
			return p.summary, err
		}
	}
	logging.WithContext(ctx, p.logger).Info("run complete",
		logging.Int("upscaled", p.summary.Upscaled),
		logging.Int("optimized", p.summary.Optimized),
		logging.Int("detected", p.summary.Detected),
		logging.Int("previewed", p.summary.Previewed),
		logging.Int("skipped", p.summary.Skipped),
		logging.Duration("elapsed", time.Since(started)),
	)
	return p.summary, nil
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", filepath.Base(path), err)
	}
}

func errTooSmall(width, height, minWidth, minHeight uint32) error {
	return services.Wrap(services.ErrInput, "classify", "scale factor",
		fmt.Sprintf("%dx%d is too small to be upscaled to %dx%d", width, height, minWidth, minHeight), nil)
}

func errUnprocessed(stage string, s Stage) error {
	return services.Wrap(services.ErrProtocol, stage, "dispatch", fmt.Sprintf("got unprocessed image %s", s), nil)
}
