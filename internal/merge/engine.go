package merge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rickgao/tickmerge/internal/model"
)

// Merger merges two ordered sources while holding at most budget records
// (budget+1 transiently).
type Merger struct {
	budget int
	logger *slog.Logger
}

// NewMerger creates a merger. Budgets below MinBudget are raised to it.
func NewMerger(budget int, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	if budget < MinBudget {
		budget = MinBudget
	}
	return &Merger{budget: budget, logger: logger}
}

// Budget returns the record budget.
func (m *Merger) Budget() int {
	return m.budget
}

// side is one input with its window of unwritten records.
type side struct {
	src   Source
	win   window
	share int
	live  bool
}

func (s *side) read() error {
	rec, ok, err := s.src.Next()
	if err != nil {
		return err
	}
	if !ok {
		s.live = false
		return nil
	}
	s.win.push(rec)
	return nil
}

// Merge writes the ordered union of left and right to out. Ties go to left.
// out is not closed.
func (m *Merger) Merge(ctx context.Context, left, right Source, out *Sink) (Stats, error) {
	leftShare := m.budget / 2
	l := &side{src: left, share: leftShare, live: true}
	r := &side{src: right, share: m.budget - leftShare, live: true}

	var stats Stats
	if e, ok := left.(encoded); ok {
		stats.LeftEncoding = e.Encoding()
	}
	if e, ok := right.(encoded); ok {
		stats.RightEncoding = e.Encoding()
	}

	var batch []model.Record
	flush := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch = m.collect(l, r, batch[:0])
		if len(batch) == 0 {
			return nil
		}
		if err := out.Write(batch); err != nil {
			return err
		}
		stats.Records += len(batch)
		stats.Flushes++
		return nil
	}

	for l.live || r.live {
		// While both inputs are live each window is capped at its share.
		if l.live && (!r.live || l.win.len() < l.share) {
			if err := l.read(); err != nil {
				return stats, fmt.Errorf("read left: %w", err)
			}
		}
		if r.live && (!l.live || r.win.len() < r.share) {
			if err := r.read(); err != nil {
				return stats, fmt.Errorf("read right: %w", err)
			}
		}

		held := l.win.len() + r.win.len()
		stats.PeakHeld = max(stats.PeakHeld, held)

		if held >= m.budget {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}

	if err := flush(); err != nil {
		return stats, err
	}

	m.logger.Debug("merge complete",
		"records", stats.Records,
		"flushes", stats.Flushes,
		"peak_held", stats.PeakHeld,
		"budget", m.budget,
	)
	return stats, nil
}

// collect moves every record that can no longer be preceded by an unread
// record into dst. Heads are merged until one window empties; the other
// window is then drained only if the input behind the empty window is
// exhausted.
func (m *Merger) collect(l, r *side, dst []model.Record) []model.Record {
	for l.win.len() > 0 && r.win.len() > 0 {
		if !model.Less(r.win.peek(), l.win.peek()) {
			dst = append(dst, l.win.pop())
		} else {
			dst = append(dst, r.win.pop())
		}
	}

	if l.win.len() == 0 && !l.live {
		for r.win.len() > 0 {
			dst = append(dst, r.win.pop())
		}
	}
	if r.win.len() == 0 && !r.live {
		for l.win.len() > 0 {
			dst = append(dst, l.win.pop())
		}
	}

	l.win.compact()
	r.win.compact()
	return dst
}
