package deps

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"wallcrop/internal/config"
)

// Directory is a path wallcrop reads from and writes into.
type Directory struct {
	Name     string
	Path     string
	Optional bool
}

// DirectoryRequirements lists the directories a run touches.
func DirectoryRequirements(paths config.Paths) []Directory {
	dirs := []Directory{
		{Name: "Wallpapers", Path: paths.WallpapersDir},
		{Name: "Metadata store", Path: filepath.Dir(paths.StorePath)},
		{Name: "Scratch", Path: paths.TempDir},
	}
	if paths.LogDir != "" {
		dirs = append(dirs, Directory{Name: "Logs", Path: paths.LogDir, Optional: true})
	}
	return dirs
}

// CheckDirectories reports whether each directory exists and is readable,
// writable and searchable by the current user.
func CheckDirectories(dirs []Directory) []Status {
	results := make([]Status, 0, len(dirs))
	for _, dir := range dirs {
		status := Status{
			Name:     dir.Name,
			Command:  dir.Path,
			Optional: dir.Optional,
		}
		info, err := os.Stat(dir.Path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			status.Detail = "directory does not exist"
		case err != nil:
			status.Detail = err.Error()
		case !info.IsDir():
			status.Detail = "not a directory"
		default:
			if err := unix.Access(dir.Path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
				status.Detail = fmt.Sprintf("not writable: %v", err)
			} else {
				status.Available = true
			}
		}
		results = append(results, status)
	}
	return results
}
