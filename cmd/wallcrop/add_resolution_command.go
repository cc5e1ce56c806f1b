package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"wallcrop/internal/geometry"
	"wallcrop/internal/logging"
	"wallcrop/internal/retrofit"
	"wallcrop/internal/store"
	"wallcrop/internal/textutil"
)

func newAddResolutionCommand(ctx *commandContext) *cobra.Command {
	var noPreview bool

	cmd := &cobra.Command{
		Use:   "add-resolution <name> <ratio>",
		Short: "Add a target aspect ratio and compute its crop for every wallpaper",
		Long: "Add-resolution registers a ratio such as 16x10 or 2560x1600 and gives every\n" +
			"known wallpaper a crop for it. Filenames whose crop was re-centered on a\n" +
			"customised neighbouring crop are printed one per line for review.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := textutil.TitleLabel(args[0])
			ratio, err := geometry.ParseAspectRatio(args[1])
			if err != nil {
				return err
			}
			ratio = ratio.WithName(name)

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			runCtx := cmd.Context()

			var review []string
			err = ctx.withStoreLock(func() error {
				var closest *geometry.AspectRatio
				if r, ok := cfg.ClosestResolution(ratio); ok {
					closest = &r
				}
				if cfg.AddResolution(name, ratio) {
					if err := cfg.Save(ctx.configPath); err != nil {
						return fmt.Errorf("save config: %w", err)
					}
					logger.Info("resolution added", logging.String("name", name),
						logging.String("ratio", ratio.String()), logging.String("config", ctx.configPath))
				}

				s, err := ctx.loadStore(runCtx, store.Options{})
				if err != nil {
					return err
				}
				result, err := retrofit.Run(runCtx, s, ratio, closest, logger)
				if err != nil {
					return err
				}
				if err := s.Save(runCtx, cfg.SortedResolutions()); err != nil {
					return err
				}
				review = result.Review
				return nil
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			paths := make([]string, 0, len(review))
			for _, fname := range review {
				fmt.Fprintln(out, fname)
				paths = append(paths, filepath.Join(cfg.Paths.WallpapersDir, fname))
			}
			if noPreview {
				return nil
			}
			return ctx.toolbox(logger).Preview(runCtx, paths)
		},
	}

	cmd.Flags().BoolVar(&noPreview, "no-preview", false, "Only print the images that need review")
	return cmd
}
