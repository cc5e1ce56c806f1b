package tools

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"wallcrop/internal/config"
	"wallcrop/internal/services"
)

// Optimizer is one format-specific optimizer invocation.
type Optimizer interface {
	// Format returns the output format name (webp, jpeg, png).
	Format() string
	// Extensions lists the output extensions handled, with the dot.
	Extensions() []string
	Binary() string
	// Args builds the argument vector that turns src into dst.
	Args(src, dst string) []string
}

type webpOptimizer struct{ binary string }

func (webpOptimizer) Format() string       { return "webp" }
func (webpOptimizer) Extensions() []string { return []string{".webp"} }
func (o webpOptimizer) Binary() string     { return o.binary }
func (webpOptimizer) Args(src, dst string) []string {
	return []string{"-q", "100", "-m", "6", "-mt", "-af", src, "-o", dst}
}

// jpegOptimizer writes into a directory; the output keeps the input's name.
type jpegOptimizer struct{ binary string }

func (jpegOptimizer) Format() string       { return "jpeg" }
func (jpegOptimizer) Extensions() []string { return []string{".jpg", ".jpeg"} }
func (o jpegOptimizer) Binary() string     { return o.binary }
func (jpegOptimizer) Args(src, dst string) []string {
	return []string{"--strip-all", src, "--dest", filepath.Dir(dst)}
}

type pngOptimizer struct{ binary string }

func (pngOptimizer) Format() string       { return "png" }
func (pngOptimizer) Extensions() []string { return []string{".png"} }
func (o pngOptimizer) Binary() string     { return o.binary }
func (pngOptimizer) Args(src, dst string) []string {
	return []string{"--opt", "max", src, "--out", dst}
}

// Registry selects an optimizer by output extension.
type Registry struct {
	byExt map[string]Optimizer
}

// NewRegistry registers the three optimizers with the configured binaries.
func NewRegistry(cfg config.Tools) *Registry {
	r := &Registry{byExt: make(map[string]Optimizer)}
	for _, opt := range []Optimizer{
		webpOptimizer{binary: cfg.Cwebp},
		jpegOptimizer{binary: cfg.Jpegoptim},
		pngOptimizer{binary: cfg.Oxipng},
	} {
		for _, ext := range opt.Extensions() {
			r.byExt[ext] = opt
		}
	}
	return r
}

// For returns the optimizer for dst's extension.
func (r *Registry) For(dst string) (Optimizer, error) {
	ext := strings.ToLower(filepath.Ext(dst))
	if opt, ok := r.byExt[ext]; ok {
		return opt, nil
	}
	return nil, services.Wrap(services.ErrInput, "optimize", "select optimizer",
		fmt.Sprintf("unsupported image format %q (supported: %s)", ext, strings.Join(r.extensions(), ", ")), nil)
}

func (r *Registry) extensions() []string {
	out := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
