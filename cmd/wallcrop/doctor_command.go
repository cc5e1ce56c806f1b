package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"wallcrop/internal/deps"
	"wallcrop/internal/services"
	"wallcrop/internal/store"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, directories and the metadata store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			emit := func(lines ...string) {
				for _, line := range lines {
					fmt.Fprintln(out, line)
				}
			}

			emit(renderSectionHeader("Configuration", colorize)...)
			emit(renderStatusLine("Config", statusInfo, ctx.configPath, colorize))
			for _, ratio := range cfg.SortedResolutions() {
				emit(renderStatusLine(ratio.Label(), statusInfo, ratio.String(), colorize))
			}

			emit("")
			emit(renderSectionHeader("Tools", colorize)...)
			toolStatus := deps.CheckBinaries(deps.ToolRequirements(cfg.Tools))
			for _, status := range toolStatus {
				emit(dependencyLine(status, colorize))
			}

			emit("")
			emit(renderSectionHeader("Directories", colorize)...)
			dirStatus := deps.CheckDirectories(deps.DirectoryRequirements(cfg.Paths))
			for _, status := range dirStatus {
				emit(dependencyLine(status, colorize))
			}

			emit("")
			emit(renderSectionHeader("Metadata store", colorize)...)
			s, storeErr := ctx.loadStore(cmd.Context(), store.Options{})
			switch {
			case storeErr != nil:
				emit(renderStatusLine("Store", statusError, storeErr.Error(), colorize))
			case !s.Exists():
				emit(renderStatusLine("Store", statusWarn, "not created yet: "+s.Path(), colorize))
			default:
				emit(renderStatusLine("Store", statusOK, s.Path(), colorize))
				emit(renderStatusLine("Wallpapers", statusInfo, strconv.Itoa(s.Len()), colorize))
			}

			if deps.Failed(toolStatus) || deps.Failed(dirStatus) || storeErr != nil {
				return services.Wrap(services.ErrConfiguration, "doctor", "check", "required dependencies are unavailable", nil)
			}
			return nil
		},
	}
}
