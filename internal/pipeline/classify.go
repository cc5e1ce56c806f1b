package pipeline

import (
	"context"
	"math"
	"path/filepath"

	"wallcrop/internal/imageinfo"
	"wallcrop/internal/logging"
	"wallcrop/internal/services"
)

// shapeTolerance absorbs the rounding an upscaler applies to odd sizes when
// comparing a stored image's shape with its source.
const shapeTolerance = 0.01

// QueueUnknown queues Detect for every image already in the wallpapers
// directory that has no metadata yet.
func (p *Pipeline) QueueUnknown(ctx context.Context) error {
	paths, err := imageinfo.Scan(p.cfg.Paths.WallpapersDir)
	if err != nil {
		return err
	}
	log := logging.WithContext(ctx, p.logger)
	for _, path := range paths {
		if _, ok := p.store.Get(path); ok || p.isQueued(path) {
			continue
		}
		log.Info("untracked wallpaper queued for detection", logging.String(logging.FieldImage, filepath.Base(path)))
		p.enqueue(path, Detect{Path: path})
	}
	return nil
}

// AddAll classifies each input in order. Directories expand to their images
// and repeated inputs are ignored.
func (p *Pipeline) AddAll(ctx context.Context, inputs []string) error {
	paths, err := imageinfo.Expand(inputs)
	if err != nil {
		return err
	}
	for _, path := range paths {
		if err := p.Add(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

// Add decides the first stage for src by comparing it with the metadata of
// its output file.
func (p *Pipeline) Add(ctx context.Context, src string) error {
	out := p.outputPath(src)
	log := logging.WithContext(services.WithImage(ctx, filepath.Base(out)), p.logger)
	if p.isQueued(out) {
		log.Debug("already queued")
		return nil
	}

	width, height, err := p.dimensions(src)
	if err != nil {
		return err
	}
	upscale := func() error {
		factor, err := ScaleFactor(width, height, uint32(p.cfg.Pipeline.MinWidth), uint32(p.cfg.Pipeline.MinHeight))
		if err != nil {
			return err
		}
		p.enqueue(out, Upscale{Source: src, Factor: factor})
		return nil
	}

	present, err := exists(out)
	if err != nil {
		return err
	}
	if !present {
		return upscale()
	}

	info, ok := p.store.Get(out)
	if !ok {
		log.Info("output exists without metadata; detecting faces")
		p.enqueue(out, Detect{Path: out})
		return nil
	}

	// The source was edited since the output was produced.
	if !sameShape(info.Width, info.Height, width, height) {
		log.Info("source shape changed; reprocessing")
		return upscale()
	}

	isDefault, err := info.IsDefaultCrops(p.ratios)
	if err != nil {
		return err
	}
	switch {
	case len(info.Faces) == 1 && !isDefault:
		log.Debug("already processed")
		p.summary.Skipped++
		return nil
	case len(info.Faces) != 1 && isDefault:
		log.Info("crops still default; queued for preview", logging.Int("faces", len(info.Faces)))
		p.enqueue(out, Preview{Path: out})
		return nil
	default:
		return upscale()
	}
}

func sameShape(aw, ah, bw, bh uint32) bool {
	if ah == 0 || bh == 0 {
		return aw == bw && ah == bh
	}
	a := float64(aw) / float64(ah)
	b := float64(bw) / float64(bh)
	return math.Abs(a-b) <= shapeTolerance*b
}
