// Package config loads and validates the merger configuration.
//
// Configuration comes from an optional YAML file with ${VAR} expansion,
// overridden by command-line flags. Durations use Go syntax ("5s") and
// memory sizes accept unit suffixes ("64MB").
package config
