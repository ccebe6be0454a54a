package model

import "strings"

// Header is the first line of every file produced by a merge.
const Header = "Symbol, Timestamp, Price, Size, Exchange, Type"

// fieldSeparator joins encoded fields.
const fieldSeparator = ", "

// Record is one parsed trade line.
type Record struct {
	Symbol        string // Explicit column (raw) or derived from the file name (intermediate)
	Timestamp     uint64 // Milliseconds since epoch, parsed from TimestampText
	TimestampText string // Original text, written back verbatim
	Price         string
	Size          string
	Exchange      string
	Type          string
}

// Less reports whether a sorts before b: earlier timestamp first, then the
// lexicographically smaller symbol.
func Less(a, b Record) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp < b.Timestamp
	}
	return a.Symbol < b.Symbol
}

// Encode renders the record in raw encoding without a line terminator.
func (r Record) Encode() string {
	return strings.Join([]string{
		r.Symbol,
		r.TimestampText,
		r.Price,
		r.Size,
		r.Exchange,
		r.Type,
	}, fieldSeparator)
}
