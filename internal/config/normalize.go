package config

import (
	"fmt"
	"os"
	"path"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDiscord()
	c.normalizeDropbox()
	c.normalizeAudio()
	if c.Dispatch.MaxConcurrent <= 0 {
		c.Dispatch.MaxConcurrent = defaultDispatchMaxConcurrent
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDiscord() {
	c.Discord.Token = strings.TrimSpace(c.Discord.Token)
	if c.Discord.Token == "" {
		if value, ok := os.LookupEnv("DISCORD_TOKEN"); ok {
			c.Discord.Token = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("DISCORD_BOT_TOKEN"); ok {
			c.Discord.Token = strings.TrimSpace(value)
		}
	}
	c.Discord.Prefix = strings.TrimSpace(c.Discord.Prefix)
}

func (c *Config) normalizeDropbox() {
	c.Dropbox.AccessToken = strings.TrimSpace(c.Dropbox.AccessToken)
	if c.Dropbox.AccessToken == "" {
		if value, ok := os.LookupEnv("DROPBOX_ACCESS_TOKEN"); ok {
			c.Dropbox.AccessToken = strings.TrimSpace(value)
		}
	}
	c.Dropbox.SamplesPath = normalizeRemotePath(c.Dropbox.SamplesPath, defaultSamplesPath)
	c.Dropbox.ChallengesPath = normalizeRemotePath(c.Dropbox.ChallengesPath, defaultChallengesPath)
}

func (c *Config) normalizeAudio() {
	c.Audio.Binary = strings.TrimSpace(c.Audio.Binary)
	if c.Audio.Binary == "" {
		c.Audio.Binary = defaultAudioBinary
	}
	c.Audio.DefaultFormat = strings.ToLower(strings.TrimSpace(c.Audio.DefaultFormat))
	if c.Audio.DefaultFormat == "" {
		c.Audio.DefaultFormat = defaultAudioFormat
	}
	c.Audio.AllowedFormats = normalizeList(c.Audio.AllowedFormats, defaultAllowedFormats)
	c.Audio.AllowedHosts = normalizeList(c.Audio.AllowedHosts, defaultAllowedHosts)
	if c.Audio.TimeoutSeconds <= 0 {
		c.Audio.TimeoutSeconds = defaultAudioTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

// normalizeList lowercases, trims, and de-duplicates entries, falling back
// when nothing usable remains.
func normalizeList(values, fallback []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.ToLower(strings.TrimSpace(value))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}

// Dropbox paths are always absolute, slash separated, without a trailing slash.
func normalizeRemotePath(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	if !strings.HasPrefix(value, "/") {
		value = "/" + value
	}
	return path.Clean(value)
}
