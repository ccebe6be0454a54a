// Package worker claims file pairs from a task queue and merges them.
//
// Each worker owns one queue. For every task it claims both inputs by
// renaming them, merges them into a temporary file, removes the inputs and
// publishes the result under a fresh INTER_ name. A failed claim is not an
// error for the worker: another worker got there first.
package worker
