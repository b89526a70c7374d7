package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"samplebot/internal/config"
)

// Requirement defines an external dependency samplebot relies on.
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

// Requirements lists the binaries the configured bot executes.
func Requirements(cfg *config.Config) []Requirement {
	ytdlp := "yt-dlp"
	ffmpeg := "ffmpeg"
	if cfg != nil {
		if strings.TrimSpace(cfg.Audio.Binary) != "" {
			ytdlp = cfg.Audio.Binary
		}
		ffmpeg = cfg.FFmpegBinary()
	}
	return []Requirement{
		{Name: "yt-dlp", Command: ytdlp, Description: "Downloads audio for samples.add and challenge.start"},
		{Name: "FFmpeg", Command: ffmpeg, Description: "Used by yt-dlp to extract audio"},
	}
}

// Check reports the availability of every requirement for cfg.
func Check(cfg *config.Config) []Status {
	return CheckBinaries(Requirements(cfg))
}

// Missing returns the required dependencies that are unavailable.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
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
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		if !isExecutablePath(resolved) {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q is not executable", resolved)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
