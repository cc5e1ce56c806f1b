package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"wallcrop/internal/services"
	"wallcrop/internal/store"
	"wallcrop/internal/wallpaper"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var facesFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recorded wallpapers",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, ok := wallpaper.ParseFaceFilter(facesFlag)
			if !ok {
				return services.Wrap(services.ErrInput, "list", "parse flags", fmt.Sprintf("invalid --faces %q (want all, zero, one or many)", facesFlag), nil)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			s, err := ctx.loadStore(cmd.Context(), store.Options{})
			if err != nil {
				return err
			}

			ratios := cfg.SortedResolutions()
			var rows [][]string
			for _, info := range s.Records() {
				if !filter.Matches(info) {
					continue
				}
				isDefault, err := info.IsDefaultCrops(ratios)
				if err != nil {
					return services.Wrap(services.ErrInput, "list", "check crops", info.Filename, err)
				}
				rows = append(rows, []string{
					info.Filename,
					fmt.Sprintf("%dx%d", info.Width, info.Height),
					strconv.Itoa(len(info.Faces)),
					yesNo(!isDefault),
				})
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No wallpapers recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Filename", "Size", "Faces", "Customised"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&facesFlag, "faces", "all", "Filter by face count: all, zero, one or many")
	return cmd
}
