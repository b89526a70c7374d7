package audio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"samplebot/internal/config"
	"samplebot/internal/logging"
	"samplebot/internal/sample"
	"samplebot/internal/services"
)

// Formats yt-dlp can extract audio to.
var supportedFormats = map[string]struct{}{
	"aac": {}, "alac": {}, "flac": {}, "m4a": {}, "mp3": {}, "opus": {}, "vorbis": {}, "wav": {},
}

const outputStem = "sample"

// Source runs yt-dlp for each fetch.
type Source struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

var _ sample.AudioSource = (*Source)(nil)

// NewSource builds a Source from the audio section of cfg.
func NewSource(cfg *config.Config, logger *slog.Logger) *Source {
	binary := "yt-dlp"
	timeout := 5 * time.Minute
	if cfg != nil {
		if strings.TrimSpace(cfg.Audio.Binary) != "" {
			binary = strings.TrimSpace(cfg.Audio.Binary)
		}
		if cfg.AudioTimeout() > 0 {
			timeout = cfg.AudioTimeout()
		}
	}
	return &Source{binary: binary, timeout: timeout, logger: logging.NewComponentLogger(logger, "audio")}
}

// metadata is the subset of yt-dlp's info JSON Fetch reads.
type metadata struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
}

// Fetch downloads sourceURL and extracts its audio as format.
func (s *Source) Fetch(ctx context.Context, sourceURL, format string) (sample.Audio, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if _, ok := supportedFormats[format]; !ok {
		return sample.Audio{}, services.Wrap(services.ErrValidation, "audio", "fetch", fmt.Sprintf("unsupported audio format %q", format), nil)
	}
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return sample.Audio{}, services.Wrap(services.ErrValidation, "audio", "fetch", "empty url", nil)
	}

	workDir, err := os.MkdirTemp("", "samplebot-audio-")
	if err != nil {
		return sample.Audio{}, services.Wrap(services.ErrTransient, "audio", "fetch", "create work dir", err)
	}
	defer os.RemoveAll(workDir)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args := []string{
		"--no-playlist",
		"--no-simulate",
		"--no-progress",
		"--dump-json",
		"-x",
		"--audio-format", format,
		"--audio-quality", "0",
		"-o", filepath.Join(workDir, outputStem+".%(ext)s"),
		"--", sourceURL,
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	started := time.Now()
	logger := logging.WithContext(ctx, s.logger)
	logger.Debug("running yt-dlp",
		logging.String(logging.FieldEventType, "audio_fetch_started"),
		logging.String("url", sourceURL),
		logging.String("format", format),
	)
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return sample.Audio{}, services.Wrap(services.ErrTimeout, "audio", "fetch", fmt.Sprintf("yt-dlp exceeded %s", s.timeout), err)
		}
		return sample.Audio{}, services.Wrap(services.ErrExternalTool, "audio", "fetch", toolMessage(stderr.String()), err)
	}

	meta, err := parseMetadata(stdout.Bytes())
	if err != nil {
		return sample.Audio{}, services.Wrap(services.ErrExternalTool, "audio", "parse", "yt-dlp metadata", err)
	}
	produced, err := findOutput(workDir, format)
	if err != nil {
		return sample.Audio{}, services.Wrap(services.ErrExternalTool, "audio", "read", "extracted audio", err)
	}
	data, err := os.ReadFile(produced)
	if err != nil {
		return sample.Audio{}, services.Wrap(services.ErrTransient, "audio", "read", "extracted audio", err)
	}

	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = meta.ID
	}
	logger.Info("audio fetched",
		logging.String(logging.FieldEventType, "audio_fetched"),
		logging.String("title", title),
		logging.Int("bytes", len(data)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return sample.Audio{Title: title, Data: data}, nil
}

// parseMetadata decodes the last JSON object yt-dlp printed.
func parseMetadata(output []byte) (metadata, error) {
	var last []byte
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) > 0 && line[0] == '{' {
			last = append(last[:0], line...)
		}
	}
	if err := scanner.Err(); err != nil {
		return metadata{}, err
	}
	if last == nil {
		return metadata{}, errors.New("no JSON in output")
	}
	var meta metadata
	if err := json.Unmarshal(last, &meta); err != nil {
		return metadata{}, err
	}
	return meta, nil
}

// findOutput prefers sample.<format> and falls back to any sample.* file.
func findOutput(dir, format string) (string, error) {
	preferred := filepath.Join(dir, outputStem+"."+format)
	if info, err := os.Stat(preferred); err == nil && !info.IsDir() {
		return preferred, nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, outputStem+".*"))
	if err != nil {
		return "", err
	}
	for _, match := range matches {
		if info, err := os.Stat(match); err == nil && !info.IsDir() {
			return match, nil
		}
	}
	return "", fmt.Errorf("no output file in %s", dir)
}

// toolMessage keeps the last line of stderr, which is where yt-dlp puts its
// ERROR: summary.
func toolMessage(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return "yt-dlp: " + line
		}
	}
	return "yt-dlp failed"
}
