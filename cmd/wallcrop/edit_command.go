package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"wallcrop/internal/config"
	"wallcrop/internal/editor"
	"wallcrop/internal/geometry"
	"wallcrop/internal/imageinfo"
	"wallcrop/internal/services"
	"wallcrop/internal/store"
	"wallcrop/internal/textutil"
	"wallcrop/internal/wallpaper"
)

type editFlags struct {
	ratio     string
	candidate int
	geometry  string
	align     string
	move      int

	faces      string
	name       string
	unmodified string
	selectName string
	offset     int
	list       bool
}

func (f editFlags) changes() bool {
	return f.candidate >= 0 || f.geometry != "" || f.align != "" || f.move != 0
}

func (f editFlags) sessionOptions(cfg *config.Config) (editor.Options, error) {
	faces, ok := wallpaper.ParseFaceFilter(f.faces)
	if !ok {
		return editor.Options{}, services.Wrap(services.ErrInput, "edit", "parse flags",
			fmt.Sprintf("invalid --faces %q (want all, zero, one or many)", f.faces), nil)
	}
	opts := editor.Options{Faces: faces, Name: f.name}
	switch value := strings.TrimSpace(f.unmodified); value {
	case "":
	case "all":
		opts.Unmodified = cfg.AspectRatios()
	default:
		for _, part := range strings.Split(value, ",") {
			ratio, err := geometry.ParseAspectRatio(strings.TrimSpace(part))
			if err != nil {
				return editor.Options{}, err
			}
			opts.Unmodified = append(opts.Unmodified, ratio)
		}
	}
	return opts, nil
}

// editTargets resolves the edit arguments. Existing files and directories
// are expanded; anything else is taken as a filename in the wallpapers
// directory. No arguments means the whole wallpapers directory.
func editTargets(wallDir string, args []string) ([]string, error) {
	if len(args) == 0 {
		return imageinfo.Scan(wallDir)
	}
	var out []string
	for _, arg := range args {
		if _, err := os.Stat(arg); err == nil {
			expanded, err := imageinfo.Expand([]string{arg})
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
			continue
		}
		out = append(out, filepath.Join(wallDir, textutil.Filename(arg)))
	}
	return out, nil
}

// navigate moves the session to --select, then steps --offset files.
func navigate(sess *editor.Session, flags editFlags) error {
	if flags.selectName != "" {
		if err := sess.Select(flags.selectName); err != nil {
			return err
		}
	}
	for i := flags.offset; i > 0; i-- {
		if err := sess.Next(); err != nil {
			return err
		}
	}
	for i := flags.offset; i < 0; i++ {
		if err := sess.Prev(); err != nil {
			return err
		}
	}
	return nil
}

// dropCustomised removes the saved wallpaper from an --unmodified list once
// its crops are no longer the defaults, moving on to the next one.
func dropCustomised(cmd *cobra.Command, sess *editor.Session, opts editor.Options) error {
	if len(opts.Unmodified) == 0 || len(sess.Files()) == 1 {
		return nil
	}
	saved := sess.Current()
	isDefault, err := saved.IsDefaultCrops(opts.Unmodified)
	if err != nil || isDefault {
		return err
	}
	if err := sess.Remove(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s; next unmodified wallpaper:\n", saved.Filename)
	return nil
}

func newEditCommand(ctx *commandContext) *cobra.Command {
	flags := editFlags{candidate: -1}

	cmd := &cobra.Command{
		Use:   "edit [paths...]",
		Short: "Inspect or adjust wallpaper crops",
		Long: "Edit loads recorded wallpapers, newest first, and prints the crops of one of them.\n" +
			"Paths may be files, directories or filenames in the wallpapers directory; with none,\n" +
			"the whole wallpapers directory is used. --faces, --name and --unmodified narrow the\n" +
			"list, --select and --offset pick the wallpaper. With --candidate, --geometry,\n" +
			"--align or --move the crop for --ratio is changed and the store saved.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := flags.sessionOptions(cfg)
			if err != nil {
				return err
			}
			files, err := editTargets(cfg.Paths.WallpapersDir, args)
			if err != nil {
				return err
			}
			runCtx := cmd.Context()

			return ctx.withStoreLock(func() error {
				s, err := ctx.loadStore(runCtx, store.Options{RequireExisting: true})
				if err != nil {
					return err
				}
				sess, err := editor.Open(s, files, cfg.AspectRatios(), opts)
				if err != nil {
					return err
				}
				if flags.ratio != "" {
					ratio, err := geometry.ParseAspectRatio(flags.ratio)
					if err != nil {
						return err
					}
					if err := sess.SetRatio(ratio); err != nil {
						return err
					}
				}
				if err := navigate(sess, flags); err != nil {
					return err
				}

				if flags.changes() {
					g, err := editedGeometry(sess, flags)
					if err != nil {
						return err
					}
					if err := sess.SetGeometry(g); err != nil {
						return err
					}
					if !sess.IsModified() {
						fmt.Fprintln(cmd.OutOrStdout(), "Crop unchanged")
					} else {
						if err := sess.Save(runCtx, cfg.SortedResolutions()); err != nil {
							return err
						}
						if err := dropCustomised(cmd, sess, opts); err != nil {
							return err
						}
					}
				}
				if flags.list {
					printFileList(cmd, sess)
				}
				return printSession(cmd, sess)
			})
		},
	}

	cmd.Flags().StringVar(&flags.ratio, "ratio", "", "Ratio to edit (defaults to the first configured)")
	cmd.Flags().IntVar(&flags.candidate, "candidate", -1, "Use the crop candidate with this index")
	cmd.Flags().StringVar(&flags.geometry, "geometry", "", "Set the crop as WxH+X+Y")
	cmd.Flags().StringVar(&flags.align, "align", "", "Align the crop: start, center or end")
	cmd.Flags().IntVar(&flags.move, "move", 0, "Move the crop by this many pixels along its axis")
	cmd.Flags().StringVar(&flags.faces, "faces", "all", "Only wallpapers with all, zero, one or many faces")
	cmd.Flags().StringVar(&flags.name, "name", "", "Only wallpapers whose filename contains this text")
	cmd.Flags().StringVar(&flags.unmodified, "unmodified", "", "Only wallpapers with default crops for these ratios (comma separated, or all)")
	cmd.Flags().StringVar(&flags.selectName, "select", "", "Start at this filename")
	cmd.Flags().IntVar(&flags.offset, "offset", 0, "Step this many wallpapers forward (negative: back), wrapping around")
	cmd.Flags().BoolVar(&flags.list, "list", false, "Print the filtered wallpaper list")
	return cmd
}

func editedGeometry(sess *editor.Session, flags editFlags) (geometry.Geometry, error) {
	switch {
	case flags.candidate >= 0:
		candidates, err := sess.CandidateGeometries()
		if err != nil {
			return geometry.Geometry{}, err
		}
		if flags.candidate >= len(candidates) {
			return geometry.Geometry{}, services.Wrap(services.ErrInput, "edit", "candidate",
				fmt.Sprintf("index %d out of range (%d candidates)", flags.candidate, len(candidates)), nil)
		}
		return candidates[flags.candidate], nil
	case flags.geometry != "":
		return geometry.Parse(flags.geometry)
	case flags.align != "":
		switch strings.ToLower(strings.TrimSpace(flags.align)) {
		case "start":
			return sess.AlignStart()
		case "center", "centre":
			return sess.AlignCenter()
		case "end":
			return sess.AlignEnd()
		default:
			return geometry.Geometry{}, services.Wrap(services.ErrInput, "edit", "align",
				fmt.Sprintf("invalid --align %q (want start, center or end)", flags.align), nil)
		}
	default:
		return sess.MoveGeometryBy(flags.move)
	}
}

func printFileList(cmd *cobra.Command, sess *editor.Session) {
	out := cmd.OutOrStdout()
	for i, f := range sess.Files() {
		marker := " "
		if i == sess.Index() {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s\n", marker, textutil.Filename(f))
	}
}

func printSession(cmd *cobra.Command, sess *editor.Session) error {
	out := cmd.OutOrStdout()
	info := sess.Current()
	fmt.Fprintf(out, "%s (%dx%d, %d faces) [%d/%d]\n", info.Filename, info.Width, info.Height, len(info.Faces),
		sess.Index()+1, len(sess.Files()))

	options, err := sess.ImageRatios()
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(options))
	for _, opt := range options {
		g, err := info.Geometry(opt.Ratio)
		if err != nil {
			return err
		}
		marker := ""
		if opt.Ratio.Equal(sess.Ratio()) {
			marker = "*"
		}
		rows = append(rows, []string{marker, opt.Ratio.Label(), opt.Ratio.String(), g.String()})
	}
	fmt.Fprintln(out, renderTable([]string{"", "Resolution", "Ratio", "Crop"}, rows, nil))

	candidates, err := sess.CandidateGeometries()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Candidates for %s:\n", sess.Ratio().Label())
	for i, g := range candidates {
		fmt.Fprintf(out, "  %s  %s\n", strconv.Itoa(i), g)
	}
	return nil
}
