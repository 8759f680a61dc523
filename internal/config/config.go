// Package config loads runtime configuration from the environment, with an
// optional .env file for local use.
package config

import (
	"errors"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything a run needs. The GitHub token is carried here
// explicitly and handed to the gateway at construction; nothing reads it
// from a global afterwards.
type Config struct {
	Token     string
	InputFile string
	OutputDir string
}

// Load reads configuration from the environment. A missing GITHUB_TOKEN is a
// fatal startup condition; the caller must not make any network call without
// a valid Config.
func Load() (*Config, error) {
	// Best effort; a missing .env just means the environment is already set.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("ORGSCOUT_INPUT", "companies.txt")
	v.SetDefault("ORGSCOUT_OUTPUT", "json_data")

	cfg := &Config{
		Token:     v.GetString("GITHUB_TOKEN"),
		InputFile: v.GetString("ORGSCOUT_INPUT"),
		OutputDir: v.GetString("ORGSCOUT_OUTPUT"),
	}
	if cfg.Token == "" {
		return nil, errors.New("GITHUB_TOKEN is not set; create a .env file with GITHUB_TOKEN=<token> or export it")
	}
	return cfg, nil
}
