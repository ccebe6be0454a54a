// Package merge combines two timestamp-ordered trade files into one.
//
// A Merger reads both inputs in lockstep and holds at most a fixed number of
// records in memory. Records are emitted only once no record still to be read
// from either input can sort before them, so the output is fully ordered
// without ever loading either input as a whole.
package merge
