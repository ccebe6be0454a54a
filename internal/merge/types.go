package merge

import "github.com/rickgao/tickmerge/internal/model"

// Stats describes a completed merge.
type Stats struct {
	Records  int // Records written to the output
	Flushes  int // Non-empty flushes
	PeakHeld int // Largest number of records held in memory at once

	LeftEncoding  model.Encoding
	RightEncoding model.Encoding
}

// window is a FIFO of records read from one input but not yet written.
type window struct {
	recs []model.Record
	head int
}

func (w *window) len() int { return len(w.recs) - w.head }

func (w *window) push(r model.Record) { w.recs = append(w.recs, r) }

func (w *window) peek() model.Record { return w.recs[w.head] }

func (w *window) pop() model.Record {
	r := w.recs[w.head]
	w.recs[w.head] = model.Record{}
	w.head++
	return r
}

// compact moves the unread records to the front so the backing array is reused.
func (w *window) compact() {
	if w.head == 0 {
		return
	}
	n := copy(w.recs, w.recs[w.head:])
	clear(w.recs[n:])
	w.recs = w.recs[:n]
	w.head = 0
}
