// Package detector runs the external face detector over a batch of images.
//
// The detector takes every path as an argument and prints one JSON array of
// face boxes per path, in argument order. Lines are decoded as they arrive,
// but results are only released once the process has exited and the line
// count matches the input count, so a short or long response can never pair
// faces with the wrong image.
package detector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"wallcrop/internal/fileutil"
	"wallcrop/internal/geometry"
	"wallcrop/internal/logging"
	"wallcrop/internal/services"
	"wallcrop/internal/tools"
)

// Result pairs one submitted path with the faces found in it.
type Result struct {
	Path  string
	Faces []geometry.Face
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec tools.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithPollInterval sets how often missing inputs are checked for.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.poll = d
		}
	}
}

// Client wraps face detector invocations.
type Client struct {
	binary string
	exec   tools.Executor
	poll   time.Duration
	logger *slog.Logger
}

// New constructs a detector client.
func New(binary string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		binary: strings.TrimSpace(binary),
		exec:   tools.CommandExecutor{},
		poll:   fileutil.DefaultPollInterval,
		logger: logging.NewComponentLogger(logger, "detector"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type line struct {
	index int
	text  string
}

// Detect waits for every path to exist, runs one detector process over all
// of them and returns one Result per path in submission order.
func (c *Client) Detect(ctx context.Context, paths []string) ([]Result, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if c.binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, "detect", "start", "face detector binary not configured", nil)
	}
	if err := fileutil.WaitForFiles(ctx, paths, c.poll); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "detect", "wait for inputs", "", err)
	}

	lines := make(chan line)
	decoded := make(chan decodeOutcome, 1)
	go func() {
		decoded <- c.collect(ctx, paths, lines)
	}()

	count := 0
	runErr := c.exec.Run(ctx, c.binary, append([]string(nil), paths...),
		func(text string) {
			lines <- line{index: count, text: text}
			count++
		},
		func(text string) {
			c.logger.Debug(text)
		},
	)
	close(lines)
	outcome := <-decoded

	if runErr != nil {
		return nil, runErr
	}
	if count != len(paths) {
		return nil, services.Wrap(services.ErrProtocol, "detect", "read output",
			fmt.Sprintf("detector printed %d lines for %d images", count, len(paths)), nil)
	}
	if outcome.err != nil {
		return nil, outcome.err
	}
	return outcome.results, nil
}

type decodeOutcome struct {
	results []Result
	err     error
}

// collect decodes lines as they arrive. It keeps draining after the first
// error so the executor never blocks on an unread line.
func (c *Client) collect(ctx context.Context, paths []string, lines <-chan line) decodeOutcome {
	var out decodeOutcome
	for l := range lines {
		if out.err != nil || l.index >= len(paths) {
			continue
		}
		path := paths[l.index]
		var boxes []geometry.DetectedFace
		if err := json.Unmarshal([]byte(strings.TrimSpace(l.text)), &boxes); err != nil {
			out.err = services.Wrap(services.ErrProtocol, "detect", "decode faces", filepath.Base(path), err)
			continue
		}
		faces := make([]geometry.Face, 0, len(boxes))
		for _, box := range boxes {
			faces = append(faces, box.ToFace())
		}
		logging.WithContext(services.WithImage(ctx, filepath.Base(path)), c.logger).
			Info("faces detected", logging.Int("faces", len(faces)))
		out.results = append(out.results, Result{Path: path, Faces: faces})
	}
	return out
}
