package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"wallcrop/internal/detector"
	"wallcrop/internal/logging"
	"wallcrop/internal/pipeline"
	"wallcrop/internal/services"
	"wallcrop/internal/store"
)

// skipPreview leaves images queued for the editor untouched.
type skipPreview struct {
	pipeline.Toolbox
}

func (skipPreview) Preview(context.Context, []string) error { return nil }

func runPipeline(ctx context.Context, p *pipeline.Pipeline, inputs []string) (pipeline.Summary, error) {
	if err := p.QueueUnknown(ctx); err != nil {
		return p.Summary(), err
	}
	if err := p.AddAll(ctx, inputs); err != nil {
		return p.Summary(), err
	}
	return p.Run(ctx)
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var noPreview bool

	cmd := &cobra.Command{
		Use:   "add [paths...]",
		Short: "Upscale, optimize and detect faces for new wallpapers",
		Long: "Add processes the given images or directories into the wallpapers directory.\n" +
			"Images already in the wallpapers directory without metadata are picked up as well.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			runCtx := cmd.Context()

			return ctx.withStoreLock(func() error {
				s, err := ctx.loadStore(runCtx, store.Options{})
				if err != nil {
					return err
				}
				if report, err := s.FindDuplicates(runCtx, cfg.Paths.WallpapersDir); err != nil {
					logger.Warn("duplicate check failed", logging.Error(err))
				} else {
					warnDuplicates(logger, report)
				}
				box := ctx.toolbox(logger)
				var toolbox pipeline.Toolbox = box
				if noPreview {
					toolbox = skipPreview{box}
				}
				p, err := pipeline.New(pipeline.Options{
					Config: cfg,
					Store:  s,
					Logger: logger,
					Tools:  toolbox,
					Detector: detector.New(cfg.Tools.Detector, logger,
						detector.WithExecutor(box.Executor()),
						detector.WithPollInterval(cfg.PollInterval())),
				})
				if err != nil {
					return err
				}
				logger.Info("add started",
					logging.Int("inputs", len(args)),
					logging.Bool("preview", !noPreview),
					logging.String(logging.FieldRunID, p.Summary().RunID))
				summary, err := runPipeline(runCtx, p, args)
				if err != nil {
					logger.Error("add failed",
						logging.Error(err),
						logging.String("error_kind", services.Kind(err)),
						logging.String(logging.FieldRunID, summary.RunID))
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Processed %d wallpapers (%d upscaled, %d skipped); %d need review\n",
					summary.Detected, summary.Upscaled, summary.Skipped, summary.Previewed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&noPreview, "no-preview", false, "Do not open the editor for images that need review")
	return cmd
}
