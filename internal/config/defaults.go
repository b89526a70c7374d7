package config

const (
	defaultDataDir               = "~/.local/share/samplebot"
	defaultLogDir                = "~/.local/share/samplebot/logs"
	defaultLogRetentionDays      = 30
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultCommandPrefix         = "sb!"
	defaultSamplesPath           = "/samples"
	defaultChallengesPath        = "/challenges"
	defaultAudioBinary           = "yt-dlp"
	defaultAudioFormat           = "wav"
	defaultAudioTimeoutSeconds   = 300
	defaultDispatchMaxConcurrent = 8
	defaultNotifyRequestTimeout  = 10
)

var (
	defaultAllowedFormats = []string{"wav", "mp3"}
	defaultAllowedHosts   = []string{"youtube.com", "youtu.be", "www.youtube.com", "music.youtube.com"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Discord: Discord{
			Prefix:         defaultCommandPrefix,
			AcceptMentions: true,
		},
		Dropbox: Dropbox{
			SamplesPath:    defaultSamplesPath,
			ChallengesPath: defaultChallengesPath,
		},
		Audio: Audio{
			Binary:         defaultAudioBinary,
			DefaultFormat:  defaultAudioFormat,
			AllowedFormats: append([]string(nil), defaultAllowedFormats...),
			AllowedHosts:   append([]string(nil), defaultAllowedHosts...),
			TimeoutSeconds: defaultAudioTimeoutSeconds,
		},
		Dispatch: Dispatch{
			MaxConcurrent: defaultDispatchMaxConcurrent,
		},
		Notifications: Notifications{
			RequestTimeout:   defaultNotifyRequestTimeout,
			ChallengeStarted: true,
			ChallengeEnded:   true,
			Errors:           true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
