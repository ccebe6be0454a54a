package model

import (
	"path/filepath"
	"strings"
)

// whitespace matches the characters stripped from both ends of a field.
const whitespace = " \n\r\t\f\v"

// Encoding identifies the column layout of a file. It is chosen per file,
// never per line.
type Encoding int

const (
	// EncodingIntermediate lines omit the symbol: Timestamp, Price, Size, Exchange, Type.
	// The symbol comes from the file name.
	EncodingIntermediate Encoding = iota

	// EncodingRaw lines carry the symbol: Symbol, Timestamp, Price, Size, Exchange, Type.
	EncodingRaw
)

// String returns the encoding name used in logs.
func (e Encoding) String() string {
	switch e {
	case EncodingRaw:
		return "raw"
	case EncodingIntermediate:
		return "intermediate"
	default:
		return "unknown"
	}
}

// Trim strips surrounding whitespace from s.
func Trim(s string) string {
	return strings.Trim(s, whitespace)
}

// firstToken returns the first comma-separated token of line, trimmed.
func firstToken(line string) string {
	token, _, _ := strings.Cut(line, ",")
	return Trim(token)
}

// DetectEncoding classifies a file by its first line. Only a leading
// "Symbol" token marks the raw layout.
func DetectEncoding(firstLine string) Encoding {
	if firstToken(firstLine) == "Symbol" {
		return EncodingRaw
	}
	return EncodingIntermediate
}

// IsHeader reports whether line is a column header for either encoding.
func IsHeader(line string) bool {
	switch firstToken(line) {
	case "Symbol", "Timestamp":
		return true
	}
	return false
}

// SymbolFromName derives the symbol of an intermediate-encoded file: the
// base name with its extension removed ("data/AAPL.txt" -> "AAPL").
func SymbolFromName(name string) string {
	base := filepath.Base(name)
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

// ParseLine parses one line. It returns false only when the line is empty.
// For intermediate encoding the symbol is derived from sourceName.
func ParseLine(line, sourceName string, enc Encoding) (Record, bool) {
	if Trim(line) == "" {
		return Record{}, false
	}

	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = Trim(fields[i])
	}

	var rec Record
	if enc == EncodingRaw {
		rec.Symbol = field(fields, 0)
		fields = fields[1:]
	} else {
		rec.Symbol = SymbolFromName(sourceName)
	}

	rec.TimestampText = field(fields, 0)
	rec.Timestamp = ParseTimestamp(rec.TimestampText)
	rec.Price = field(fields, 1)
	rec.Size = field(fields, 2)
	rec.Exchange = field(fields, 3)
	rec.Type = field(fields, 4)

	return rec, true
}

// field returns fields[i], or "" when the line is short.
func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}
