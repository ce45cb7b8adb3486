package config

const (
	defaultDataDir          = "~/.local/share/trackfeed"
	defaultLogDir           = "~/.local/share/trackfeed/logs"
	defaultSpotifyBaseURL   = "https://api.spotify.com/v1"
	defaultSpotifyTokenURL  = "https://accounts.spotify.com/api/token"
	defaultLookbackDays     = 90
	defaultWorkers          = 8
	defaultMaxRetries       = 3
	defaultRetryBaseDelay   = 2
	defaultCallDeadline     = 300
	defaultRequestsPerSec   = 10.0
	defaultRequestBurst     = 5
	defaultFreshAgeDays     = 30
	defaultFreshTTLHours    = 6
	defaultRecentAgeDays    = 180
	defaultRecentTTLHours   = 24
	defaultArchiveTTLHours  = 168
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// defaultNoiseKeywords marks non-original recordings.
var defaultNoiseKeywords = []string{
	"live", "remaster", "demo", "commentary", "instrumental", "karaoke",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Spotify: Spotify{
			BaseURL:  defaultSpotifyBaseURL,
			TokenURL: defaultSpotifyTokenURL,
		},
		Tracker: Tracker{
			LookbackDays:   defaultLookbackDays,
			Workers:        defaultWorkers,
			MaxRetries:     defaultMaxRetries,
			RetryBaseDelay: defaultRetryBaseDelay,
			CallDeadline:   defaultCallDeadline,
			RequestsPerSec: defaultRequestsPerSec,
			RequestBurst:   defaultRequestBurst,
			NoiseKeywords:  append([]string(nil), defaultNoiseKeywords...),
		},
		Cache: Cache{
			FreshAgeDays:    defaultFreshAgeDays,
			FreshTTLHours:   defaultFreshTTLHours,
			RecentAgeDays:   defaultRecentAgeDays,
			RecentTTLHours:  defaultRecentTTLHours,
			ArchiveTTLHours: defaultArchiveTTLHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
