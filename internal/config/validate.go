package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate ensures the configuration is internally consistent. Credentials are
// checked separately by ValidateRuntime so inspection commands work without them.
func (c *Config) Validate() error {
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateDropbox(); err != nil {
		return err
	}
	if c.Dispatch.MaxConcurrent <= 0 {
		return errors.New("dispatch.max_concurrent must be positive")
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

// ValidateRuntime checks the settings the bot needs to connect to its collaborators.
func (c *Config) ValidateRuntime() error {
	if err := c.Validate(); err != nil {
		return err
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/samplebot/config.toml"
	}
	if strings.TrimSpace(c.Discord.Token) == "" {
		return fmt.Errorf("discord.token is required. Set DISCORD_TOKEN env var or edit %s (create with 'samplebot config init')", defaultPath)
	}
	if strings.TrimSpace(c.Discord.Prefix) == "" && !c.Discord.AcceptMentions {
		return errors.New("discord.prefix must be set when discord.accept_mentions is false")
	}
	if strings.TrimSpace(c.Dropbox.AccessToken) == "" {
		return fmt.Errorf("dropbox.access_token is required. Set DROPBOX_ACCESS_TOKEN env var or edit %s", defaultPath)
	}
	return nil
}

func (c *Config) validateAudio() error {
	if !slices.Contains(c.Audio.AllowedFormats, c.Audio.DefaultFormat) {
		return fmt.Errorf("audio.default_format %q must be one of audio.allowed_formats %v", c.Audio.DefaultFormat, c.Audio.AllowedFormats)
	}
	for _, host := range c.Audio.AllowedHosts {
		if strings.ContainsAny(host, "/:") {
			return fmt.Errorf("audio.allowed_hosts entry %q must be a bare hostname", host)
		}
	}
	if c.Audio.TimeoutSeconds <= 0 {
		return errors.New("audio.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateDropbox() error {
	if c.Dropbox.SamplesPath == "/" {
		return errors.New("dropbox.samples_path must not be the root folder")
	}
	if c.Dropbox.ChallengesPath == "/" {
		return errors.New("dropbox.challenges_path must not be the root folder")
	}
	return nil
}
