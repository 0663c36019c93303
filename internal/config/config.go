// Package config reads the experiment runner's settings from the environment.
// The runner takes no command-line flags.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"visuomotor/experiment/session"
)

// Config controls where trials come from, where results go and how the runner
// is hosted.
type Config struct {
	TrialsPath string `env:"VMA_TRIALS"      envDefault:"trials.csv"`
	ResultsDir string `env:"VMA_RESULTS_DIR" envDefault:"Results"`
	Format     string `env:"VMA_FORMAT"      envDefault:"json"`

	Fullscreen bool `env:"VMA_FULLSCREEN" envDefault:"true"`
	Width      int  `env:"VMA_WIDTH"      envDefault:"1280"`
	Height     int  `env:"VMA_HEIGHT"     envDefault:"800"`

	Headless   bool   `env:"VMA_HEADLESS"    envDefault:"false"`
	HeadlessHz int    `env:"VMA_HEADLESS_HZ" envDefault:"60"`
	ScriptPath string `env:"VMA_SCRIPT"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings the runner cannot use.
func (c Config) Validate() error {
	if c.TrialsPath == "" {
		return fmt.Errorf("config: VMA_TRIALS is empty")
	}
	if _, err := session.StoreFor(c.Format); err != nil {
		return fmt.Errorf("config: VMA_FORMAT: %w", err)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("config: invalid surface size %dx%d", c.Width, c.Height)
	}
	if c.Headless && c.HeadlessHz <= 0 {
		return fmt.Errorf("config: invalid VMA_HEADLESS_HZ %d", c.HeadlessHz)
	}
	return nil
}
