// Package config defines the command-line and environment configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/ahmedmed7t/smartcookly/internal/logger"
)

// Config is the parsed application configuration. Precedence is flags,
// then environment (including a .env file), then defaults.
type Config struct {
	Verbose bool   `help:"Enable verbose/debug logging." short:"v"`
	Quiet   bool   `help:"Disable all logging." short:"q"`
	LogFile string `help:"File to write logs to (use \"stderr\" to log to console)." default:".smartcookly/smartcookly.log"`

	Plain  bool     `help:"Use a plain line-based prompt instead of the full-screen UI."`
	Recipe string   `help:"Recipe to open at startup, skipping the picker." short:"r"`
	With   []string `help:"Ingredients for --recipe, comma separated." sep:","`

	DB      string `help:"Path of the favorites database (empty keeps favorites in memory)." default:".smartcookly/favorites.db" env:"SMARTCOOKLY_DB"`
	NoAI    bool   `help:"Use the built-in recipes only, even if an API key is set." name:"no-ai"`
	NoSound bool   `help:"Disable the timer chime." name:"no-sound"`

	Tick     time.Duration `help:"Countdown tick interval." default:"1s" hidden:""`
	Model    string        `help:"Chat model used for steps and command classification." default:"gpt-4o-mini" env:"SMARTCOOKLY_MODEL"`
	BaseURL  string        `help:"Override the chat API base URL." name:"base-url" env:"OPENAI_BASE_URL"`
	APIKey   string        `help:"API key of the chat service." name:"api-key" env:"OPENAI_API_KEY"`
	Timeout  time.Duration `help:"Timeout of one chat request." default:"30s"`
	Prefetch bool          `help:"Resolve the built-in recipes in the background at startup." default:"true" negatable:""`
}

// Validate is called by kong after parsing.
func (c *Config) Validate() error {
	if c.Verbose && c.Quiet {
		return fmt.Errorf("--verbose and --quiet are mutually exclusive")
	}
	if c.Tick <= 0 {
		return fmt.Errorf("--tick must be positive, got %s", c.Tick)
	}
	if len(c.With) > 0 && c.Recipe == "" {
		return fmt.Errorf("--with requires --recipe")
	}
	return nil
}

// LogLevel maps the verbosity flags onto a logger level.
func (c *Config) LogLevel() logger.Level {
	switch {
	case c.Quiet:
		return logger.LevelOff
	case c.Verbose:
		return logger.LevelVerbose
	default:
		return logger.LevelNormal
	}
}

// AIEnabled reports whether steps come from the chat service.
func (c *Config) AIEnabled() bool {
	return !c.NoAI && strings.TrimSpace(c.APIKey) != ""
}

// Ingredients returns the trimmed, non-empty --with values.
func (c *Config) Ingredients() []string {
	out := make([]string, 0, len(c.With))
	for _, ing := range c.With {
		if ing = strings.TrimSpace(ing); ing != "" {
			out = append(out, ing)
		}
	}
	return out
}

// Load reads a .env file if one exists, then parses args. Pass
// os.Args[1:] in production.
func Load(args []string, opts ...kong.Option) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	opts = append([]kong.Option{
		kong.Name("smartcookly"),
		kong.Description("Step-by-step cooking sessions with per-step timers."),
		kong.UsageOnError(),
	}, opts...)

	parser, err := kong.New(&cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("building flag parser: %w", err)
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, err
	}
	return &cfg, nil
}
