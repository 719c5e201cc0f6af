package syncer

import (
	"time"
)

// Config controls sync cadence and retry behavior.
type Config struct {
	Interval      time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	AutoSync      bool
}

func DefaultConfig() Config {
	return Config{
		Interval:      30 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    2 * time.Second,
		AutoSync:      true,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = defaults.Interval
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = defaults.RetryAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaults.RetryDelay
	}
	return c
}
