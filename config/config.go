// Package config loads engine settings from defaults, an optional yaml
// file, and SIXSTONE_-prefixed environment variables, in increasing
// priority.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const envPrefix = "sixstone"

// Config carries every engine knob. Zero values are never used directly;
// call Load or Default.
type Config struct {
	// MoveTimeLimit is the wall-clock budget for one full turn.
	MoveTimeLimit time.Duration
	// ThreatSpaceTimeLimit caps the forced-win proof phase within a turn.
	ThreatSpaceTimeLimit time.Duration

	// TTFraction sizes the transposition table as a share of system RAM.
	TTFraction float64

	// OverlineWins controls whether runs longer than six win.
	OverlineWins bool

	// MaxDepth bounds iterative deepening.
	MaxDepth int
	// CandidateLimit caps moves per search node.
	CandidateLimit int
	// PNNodeBudget bounds the proof-number tree.
	PNNodeBudget int

	// OpeningBook enables the early-game templates.
	OpeningBook bool

	// Debug lowers the global log level to debug.
	Debug bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("move-time-limit", 9*time.Second)
	v.SetDefault("threat-space-time-limit", 3*time.Second)
	v.SetDefault("tt-fraction", 0.10)
	v.SetDefault("overline-wins", true)
	v.SetDefault("max-depth", 8)
	v.SetDefault("candidate-limit", 20)
	v.SetDefault("pn-node-budget", 80000)
	v.SetDefault("opening-book", true)
	v.SetDefault("debug", false)
}

// Default returns the built-in configuration, ignoring file and env.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	return fromViper(v)
}

// Load reads sixstone.yaml from the working directory when present, then
// applies SIXSTONE_* environment overrides (SIXSTONE_MOVE_TIME_LIMIT and
// friends).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName(envPrefix)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	c := fromViper(v)
	log.Debug().Dur("move-time-limit", c.MoveTimeLimit).
		Int("max-depth", c.MaxDepth).Bool("overline-wins", c.OverlineWins).
		Msg("config-loaded")
	return c, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		MoveTimeLimit:        v.GetDuration("move-time-limit"),
		ThreatSpaceTimeLimit: v.GetDuration("threat-space-time-limit"),
		TTFraction:           v.GetFloat64("tt-fraction"),
		OverlineWins:         v.GetBool("overline-wins"),
		MaxDepth:             v.GetInt("max-depth"),
		CandidateLimit:       v.GetInt("candidate-limit"),
		PNNodeBudget:         v.GetInt("pn-node-budget"),
		OpeningBook:          v.GetBool("opening-book"),
		Debug:                v.GetBool("debug"),
	}
}

// AdjustLogLevel applies the configured verbosity globally.
func (c *Config) AdjustLogLevel() {
	if c.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
