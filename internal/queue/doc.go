// Package queue provides the unbounded blocking FIFO that feeds each worker
// its merge tasks.
package queue
