// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Merge outcomes by result, records merged and merge latency
//   - Claim conflicts between workers
//   - Rounds, dispatched tasks and discoverable files
//   - Convergences
//
// Metrics live on a private registry so several instances can coexist in
// one process.
package metrics
