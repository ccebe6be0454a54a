// Package status serves the merger's HTTP endpoints: a JSON health check,
// Prometheus metrics and a websocket feed of merge events.
package status
