package pipeline

import (
	"flag"

	"go.uber.org/zap"
)

// Settings are the environment-backed upstream and logging options shared by
// every command. Commands embed it in their own Config.
type Settings struct {
	TWHelpBaseURL     string `env:"TWBB_TWHELP_BASE_URL"      envDefault:"https://twhelp.app"`
	DiscordAPIBaseURL string `env:"TWBB_DISCORD_API_BASE_URL" envDefault:"https://discord.com/api/v10"`
	DiscordAppID      string `env:"TWBB_DISCORD_APP_ID"`
	DiscordToken      string `env:"TWBB_DISCORD_TOKEN"`
	Strategy          string `env:"TWBB_RESOLVER_STRATEGY"    envDefault:"snapshot"`
	SnapshotScheme    string `env:"TWBB_SNAPSHOT_SCHEME"      envDefault:"https"`
	Locale            string `env:"TWBB_LOCALE"               envDefault:"en-US"`
	LogLevel          string `env:"TWBB_LOG_LEVEL"            envDefault:"info"`
	LogDev            bool   `env:"TWBB_LOG_DEV"`
}

// RegisterFlags binds the overridable settings to fs using the current values
// as defaults.
func (s *Settings) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&s.TWHelpBaseURL, "twhelp-base-url", s.TWHelpBaseURL, "twhelp API base URL")
	fs.StringVar(&s.Strategy, "strategy", s.Strategy, "entity resolver strategy: snapshot or directory")
	fs.StringVar(&s.Locale, "locale", s.Locale, "locale for fallback text")
	fs.StringVar(&s.LogLevel, "log-level", s.LogLevel, "log level")
	fs.BoolVar(&s.LogDev, "log-dev", s.LogDev, "human-readable logs")
}

// Config converts settings into a pipeline Config.
func (s Settings) Config(logger *zap.Logger) Config {
	return Config{
		TWHelpBaseURL:     s.TWHelpBaseURL,
		DiscordAPIBaseURL: s.DiscordAPIBaseURL,
		DiscordAppID:      s.DiscordAppID,
		DiscordToken:      s.DiscordToken,
		Strategy:          s.Strategy,
		SnapshotScheme:    s.SnapshotScheme,
		Locale:            s.Locale,
		Logger:            logger,
	}
}
