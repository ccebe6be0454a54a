package config

import (
	"strings"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultPollInterval = 5 * time.Second
	DefaultWarmUp       = 1 * time.Second
	DefaultLogLevel     = "info"
	DefaultStatusPort   = 9090
	DefaultDBPort       = 5432
	DefaultDBSSLMode    = "prefer"
	DefaultMaxConns     = 4
	DefaultMinConns     = 1
)

func (c *Config) applyDefaults() {
	// Merge defaults
	c.Merge.Directory = strings.TrimRight(c.Merge.Directory, "/")
	if c.Merge.PollInterval == 0 {
		c.Merge.PollInterval = DefaultPollInterval
	}
	if c.Merge.WarmUp == 0 {
		c.Merge.WarmUp = DefaultWarmUp
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}

	// Status defaults
	if c.Status.Port == 0 {
		c.Status.Port = DefaultStatusPort
	}

	// Journal defaults
	applyDBDefaults(&c.Journal.Database)
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
