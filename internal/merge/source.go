package merge

import (
	"bufio"
	"fmt"
	"os"

	"github.com/rickgao/tickmerge/internal/model"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// Source yields records in ascending order. Next returns false once the
// input is exhausted.
type Source interface {
	Next() (model.Record, bool, error)
}

// encoded is implemented by sources that know their file encoding.
type encoded interface {
	Encoding() model.Encoding
}

// FileSource reads records from a file on disk.
type FileSource struct {
	f       *os.File
	scanner *bufio.Scanner
	name    string
	enc     model.Encoding

	pending string
	hasLine bool
}

// OpenFile opens path and detects its encoding from the first non-empty
// line. A header line is consumed. symbolName is the discoverable file name
// used to derive the symbol of intermediate-encoded lines.
func OpenFile(path, symbolName string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	s := &FileSource{
		f:       f,
		scanner: scanner,
		name:    symbolName,
		enc:     model.EncodingIntermediate,
	}

	line, ok, err := s.nextLine()
	if err != nil {
		f.Close()
		return nil, err
	}
	if ok {
		s.enc = model.DetectEncoding(line)
		if !model.IsHeader(line) {
			s.pending = line
			s.hasLine = true
		}
	}
	return s, nil
}

// Encoding returns the layout detected for this file.
func (s *FileSource) Encoding() model.Encoding {
	return s.enc
}

// Next returns the next record.
func (s *FileSource) Next() (model.Record, bool, error) {
	if s.hasLine {
		s.hasLine = false
		rec, _ := model.ParseLine(s.pending, s.name, s.enc)
		return rec, true, nil
	}

	line, ok, err := s.nextLine()
	if err != nil || !ok {
		return model.Record{}, false, err
	}
	rec, _ := model.ParseLine(line, s.name, s.enc)
	return rec, true, nil
}

// nextLine returns the next non-empty line.
func (s *FileSource) nextLine() (string, bool, error) {
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if model.Trim(line) == "" {
			continue
		}
		return line, true, nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", false, fmt.Errorf("read %s: %w", s.name, err)
	}
	return "", false, nil
}

// Close closes the underlying file.
func (s *FileSource) Close() error {
	return s.f.Close()
}
