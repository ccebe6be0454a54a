// Package model defines the trade record that flows through every merge and
// the line codec used to read and write it.
//
// Conventions:
//   - Timestamps: uint64 milliseconds since Unix epoch, derived once from the text form
//   - Price, size, exchange and type are kept as opaque text
//   - Ordering: timestamp ascending, then symbol ascending (byte-wise)
package model
