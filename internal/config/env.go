package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable read by recipescan.
const EnvPrefix = "RECIPESCAN"

// Env holds the settings that may come from the environment.
// Unset variables leave the corresponding Config field unchanged.
type Env struct {
	// DSN maps to RECIPESCAN_DB_DSN.
	DSN string `envconfig:"DB_DSN"`

	// UserAgent maps to RECIPESCAN_USER_AGENT.
	UserAgent string `envconfig:"USER_AGENT"`

	// Timeout maps to RECIPESCAN_TIMEOUT, e.g. "30s".
	Timeout *time.Duration `envconfig:"TIMEOUT"`

	// RetryInterval maps to RECIPESCAN_RETRY_INTERVAL.
	RetryInterval *time.Duration `envconfig:"RETRY_INTERVAL"`

	// MaxRetries maps to RECIPESCAN_MAX_RETRIES.
	MaxRetries *int `envconfig:"MAX_RETRIES"`
}

// LoadEnv reads the .env file at envFile, if it exists, into the process
// environment and then parses the RECIPESCAN_ variables. Variables already
// set in the environment win over the file.
func LoadEnv(envFile string) (*Env, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if _, statErr := os.Stat(envFile); statErr == nil {
				return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
			} else if !errors.Is(statErr, os.ErrNotExist) {
				return nil, statErr
			}
		}
	}

	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	return &env, nil
}

// ApplyEnv copies the set environment values onto c.
func (c *Config) ApplyEnv(env *Env) {
	if env == nil {
		return
	}
	if env.DSN != "" {
		c.DSN = env.DSN
	}
	if env.UserAgent != "" {
		c.UserAgent = env.UserAgent
	}
	if env.Timeout != nil {
		c.Timeout = *env.Timeout
	}
	if env.RetryInterval != nil {
		c.RetryInterval = *env.RetryInterval
	}
	if env.MaxRetries != nil {
		c.MaxRetries = *env.MaxRetries
	}
}
