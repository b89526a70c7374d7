package deps

import (
	"os"
	"os/exec"
	"runtime"
)

// ResolveFFmpegPath returns the ffmpeg binary yt-dlp will find on PATH, or
// "ffmpeg" when none is installed.
func ResolveFFmpegPath() string {
	if resolved, err := exec.LookPath("ffmpeg"); err == nil {
		return resolved
	}
	return "ffmpeg"
}

func isExecutablePath(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return isExecutable(info)
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
