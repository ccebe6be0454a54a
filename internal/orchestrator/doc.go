// Package orchestrator drives rounds of pairwise merging.
//
// Each round scans the working directory, pairs the discoverable files in
// name order and hands the pairs to workers round-robin. When a single
// merged file remains and nothing is in flight, it is renamed to the final
// output name.
package orchestrator
