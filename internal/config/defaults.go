package config

const (
	defaultDatabaseDir = "~/.local/share/substation"
	defaultLogDir      = "~/.local/share/substation/logs"
	defaultAPIBind     = "127.0.0.1:7879"

	defaultOpenSubtitlesBaseURL   = "https://api.opensubtitles.com/api/v1"
	defaultOpenSubtitlesUserAgent = "Substation/1.0"
	defaultRequestInterval        = 1
	defaultThrottleMinutes        = 10
	defaultOpenSubtitlesPriority  = 10

	defaultFileFlowsTimeoutSeconds = 600
	defaultFileFlowsPriority       = 20

	defaultScanIntervalMinutes = 180

	defaultNtfyRequestTimeout = 10

	defaultLogLevel      = "info"
	defaultLogFormat     = "console"
	defaultRetentionDays = 14
)

// Default returns the configuration populated with built-in defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DatabaseDir: defaultDatabaseDir,
			LogDir:      defaultLogDir,
			APIBind:     defaultAPIBind,
		},
		OpenSubtitles: OpenSubtitles{
			Enabled:         false,
			UserAgent:       defaultOpenSubtitlesUserAgent,
			BaseURL:         defaultOpenSubtitlesBaseURL,
			RequestInterval: defaultRequestInterval,
			ThrottleMinutes: defaultThrottleMinutes,
			Priority:        defaultOpenSubtitlesPriority,
		},
		FileFlows: FileFlows{
			Enabled:         false,
			TimeoutSeconds:  defaultFileFlowsTimeoutSeconds,
			Languages:       []string{"en"},
			ThrottleMinutes: defaultThrottleMinutes,
			Priority:        defaultFileFlowsPriority,
		},
		Wanted: Wanted{
			ScanInterval:  defaultScanIntervalMinutes,
			MonitoredOnly: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
			Acquired:       true,
			Errors:         true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultRetentionDays,
		},
	}
}
