// Package deps reports whether the external tools and directories wallcrop
// relies on are usable.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"wallcrop/internal/config"
)

// Requirement defines an external dependency wallcrop relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// ToolRequirements lists the binaries named by the tools config. The editor
// is optional: without it previews are only logged.
func ToolRequirements(tools config.Tools) []Requirement {
	return []Requirement{
		{Name: "Upscaler", Command: tools.Upscaler, Description: "Enlarges images below the minimum size"},
		{Name: "Face detector", Command: tools.Detector, Description: "Finds faces for the default crops"},
		{Name: "cwebp", Command: tools.Cwebp, Description: "Writes optimized WebP output"},
		{Name: "jpegoptim", Command: tools.Jpegoptim, Description: "Writes optimized JPEG output"},
		{Name: "oxipng", Command: tools.Oxipng, Description: "Writes optimized PNG output"},
		{Name: "Editor", Command: tools.Editor, Description: "Opens images for crop review", Optional: true},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch {
		case cmd == "":
			status.Detail = "command not configured"
		default:
			if _, err := exec.LookPath(cmd); err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", cmd)
			} else {
				status.Available = true
			}
		}
		results = append(results, status)
	}
	return results
}

// Failed reports whether any required dependency is unavailable.
func Failed(statuses []Status) bool {
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			return true
		}
	}
	return false
}
