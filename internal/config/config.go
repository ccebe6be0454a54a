package config

import "time"

// Config is the root configuration of a merge run.
type Config struct {
	Merge   MergeConfig   `yaml:"merge"`
	Logging LoggingConfig `yaml:"logging"`
	Status  StatusConfig  `yaml:"status"`
	Journal JournalConfig `yaml:"journal"`
}

// MergeConfig holds the merge pipeline settings.
type MergeConfig struct {
	Directory      string        `yaml:"directory"`
	Workers        int           `yaml:"workers"`
	MemoryBytes    ByteSize      `yaml:"memory"` // Per-merge allowance, e.g. 67108864 or "64MB"
	PollInterval   time.Duration `yaml:"poll_interval"`
	WarmUp         time.Duration `yaml:"warm_up"`
	ExitOnConverge bool          `yaml:"exit_on_converge"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Optional JSON log file, in addition to stderr
}

// StatusConfig holds the HTTP status server settings.
type StatusConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// JournalConfig holds the merge-run journal settings.
type JournalConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Database DBConfig `yaml:"database"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}
