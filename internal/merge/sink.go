package merge

import (
	"bufio"
	"fmt"
	"os"

	"github.com/rickgao/tickmerge/internal/model"
)

// Sink writes merged records in raw encoding, headed by model.Header.
type Sink struct {
	f       *os.File
	w       *bufio.Writer
	started bool
	closed  bool
}

// CreateFile creates (or truncates) path for writing.
func CreateFile(path string) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return &Sink{f: f, w: bufio.NewWriter(f)}, nil
}

// Write appends records. The header precedes the first record.
func (s *Sink) Write(recs []model.Record) error {
	if len(recs) == 0 {
		return nil
	}
	if err := s.writeHeader(); err != nil {
		return err
	}
	for _, r := range recs {
		if _, err := s.w.WriteString(r.Encode()); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := s.w.WriteByte('\n'); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	return nil
}

func (s *Sink) writeHeader() error {
	if s.started {
		return nil
	}
	s.started = true
	if _, err := s.w.WriteString(model.Header + "\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// Close flushes buffered output and syncs it to disk. An output that never
// received a record still gets its header. Close is idempotent.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.writeHeader()
	if err == nil {
		err = s.w.Flush()
	}
	if err == nil {
		err = s.f.Sync()
	}
	if cerr := s.f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}
