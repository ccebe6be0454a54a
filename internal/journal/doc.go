// Package journal records merge runs in PostgreSQL.
//
// Every completed task and every convergence becomes one row in merge_runs.
// Rows are queued and written by a background goroutine; a database outage
// is logged and never blocks or fails a merge.
package journal
