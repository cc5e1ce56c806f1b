package pipeline

import (
	"context"
	"path/filepath"

	"wallcrop/internal/fileutil"
	"wallcrop/internal/geometry"
	"wallcrop/internal/logging"
	"wallcrop/internal/services"
	"wallcrop/internal/textutil"
	"wallcrop/internal/wallpaper"
)

// UpscaleAll runs the upscaler for every Upscale stage with a factor above
// one. Factor 1 goes straight to Optimize on the original file.
func (p *Pipeline) UpscaleAll(ctx context.Context) error {
	for i, s := range p.images {
		switch s := s.(type) {
		case Upscale:
			if s.Factor <= 1 {
				p.images[i] = Optimize{Path: s.Source}
				continue
			}
			dst := textutil.WithDir(s.Source, p.cfg.Paths.TempDir)
			if p.cfg.Pipeline.Format != "" {
				dst = textutil.ReplaceExt(dst, p.cfg.Pipeline.Format)
			}
			logging.WithContext(services.WithImage(ctx, filepath.Base(s.Source)), p.logger).
				Info("upscaling", logging.Int("factor", s.Factor))
			if err := p.tools.Upscale(ctx, s.Source, dst, s.Factor); err != nil {
				return err
			}
			p.summary.Upscaled++
			p.images[i] = Optimize{Path: dst}
		case Optimize, Detect, Preview:
		}
	}
	return nil
}

// OptimizeAll waits for each Optimize input to appear, then writes the
// optimized file into the wallpapers directory.
func (p *Pipeline) OptimizeAll(ctx context.Context) error {
	for i, s := range p.images {
		switch s := s.(type) {
		case Upscale:
			return errUnprocessed("optimize", s)
		case Optimize:
			if err := fileutil.WaitForFile(ctx, s.Path, p.cfg.PollInterval()); err != nil {
				return services.Wrap(services.ErrExternalTool, "optimize", "wait for input", filepath.Base(s.Path), err)
			}
			out := p.outputPath(s.Path)
			logging.WithContext(services.WithImage(ctx, filepath.Base(out)), p.logger).Info("optimizing")
			if err := p.tools.Optimize(ctx, s.Path, out); err != nil {
				return err
			}
			p.summary.Optimized++
			p.images[i] = Detect{Path: out}
		case Detect, Preview:
		}
	}
	return nil
}

// DetectAll runs one detector process over every Detect image, records a
// metadata entry per image and saves the store once. Nothing is written
// unless every image produced a result.
func (p *Pipeline) DetectAll(ctx context.Context) error {
	var paths []string
	var next []Stage
	for _, s := range p.images {
		switch s := s.(type) {
		case Upscale, Optimize:
			return errUnprocessed("detect", s)
		case Detect:
			paths = append(paths, s.Path)
		case Preview:
			next = append(next, s)
		}
	}
	if len(paths) == 0 {
		p.images = next
		return nil
	}

	results, err := p.detector.Detect(ctx, paths)
	if err != nil {
		return err
	}

	infos := make([]wallpaper.Info, 0, len(results))
	for _, res := range results {
		info, err := p.describe(res.Path, res.Faces)
		if err != nil {
			return err
		}
		infos = append(infos, info)
	}

	for _, info := range infos {
		p.store.Insert(info)
		p.summary.Detected++
		if len(info.Faces) != 1 {
			next = append(next, Preview{Path: info.Path(p.cfg.Paths.WallpapersDir)})
		}
	}
	if err := p.store.Save(ctx, p.ratios); err != nil {
		return err
	}
	logging.WithContext(ctx, p.logger).Info("metadata saved",
		logging.Int("images", len(infos)), logging.String("store", p.store.Path()))
	p.images = next
	return nil
}

// describe builds the metadata entry for a freshly detected image, with the
// default crop for every configured ratio.
func (p *Pipeline) describe(path string, faces []geometry.Face) (wallpaper.Info, error) {
	width, height, err := p.dimensions(path)
	if err != nil {
		return wallpaper.Info{}, err
	}
	info := wallpaper.Info{
		Filename: textutil.Filename(path),
		Width:    width,
		Height:   height,
		Faces:    faces,
	}
	c, err := info.Cropper()
	if err != nil {
		return wallpaper.Info{}, err
	}
	for _, ratio := range p.ratios {
		g, err := c.Crop(ratio)
		if err != nil {
			return wallpaper.Info{}, services.Wrap(services.ErrInput, "detect", "crop", info.Filename, err)
		}
		info.SetGeometry(ratio, g)
	}
	return info, nil
}

// PreviewAll hands every Preview image to the editor.
func (p *Pipeline) PreviewAll(ctx context.Context) error {
	var paths []string
	for _, s := range p.images {
		switch s := s.(type) {
		case Upscale, Optimize, Detect:
			return errUnprocessed("preview", s)
		case Preview:
			paths = append(paths, s.Path)
		}
	}
	if len(paths) == 0 {
		return nil
	}
	logging.WithContext(ctx, p.logger).Info("opening editor", logging.Int("images", len(paths)))
	if err := p.tools.Preview(ctx, paths); err != nil {
		return err
	}
	p.summary.Previewed += len(paths)
	p.images = nil
	return nil
}
