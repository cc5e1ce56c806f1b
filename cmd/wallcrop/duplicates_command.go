package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"wallcrop/internal/logging"
	"wallcrop/internal/store"
)

func newDuplicatesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicates",
		Short: "Report duplicate and missing wallpapers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			s, err := ctx.loadStore(cmd.Context(), store.Options{})
			if err != nil {
				return err
			}
			report, err := s.FindDuplicates(cmd.Context(), cfg.Paths.WallpapersDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(report.Groups) == 0 && len(report.Missing) == 0 {
				fmt.Fprintln(out, "No duplicates found")
				return nil
			}
			for _, group := range report.Groups {
				fmt.Fprintf(out, "%s: %s\n", group.Kind, strings.Join(group.Filenames, ", "))
			}
			for _, name := range report.Missing {
				fmt.Fprintf(out, "missing: %s\n", name)
			}
			warnDuplicates(logger, report)
			return nil
		},
	}
}

// warnDuplicates logs one warning per duplicate group. It never fails; the
// groups are for a person to resolve.
func warnDuplicates(logger *slog.Logger, report store.DuplicateReport) {
	for _, group := range report.Groups {
		logging.WarnWithContext(logger, "duplicate wallpapers found", "duplicates",
			logging.String("kind", string(group.Kind)),
			logging.String("files", strings.Join(group.Filenames, ", ")),
			logging.String(logging.FieldErrorHint, "remove the extra files and their rows"),
			logging.String(logging.FieldImpact, "the same image is cropped more than once"))
	}
}
