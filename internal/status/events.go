package status

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/tickmerge/internal/worker"
)

// Event types.
const (
	EventMerge       = "merge"
	EventConvergence = "convergence"
)

// subscriberBuffer is the number of events a slow subscriber may lag
// behind before it is dropped.
const subscriberBuffer = 64

// Event is one message on the /events feed.
type Event struct {
	Type    string    `json:"type"`
	Worker  string    `json:"worker,omitempty"`
	Inputs  []string  `json:"inputs,omitempty"`
	Output  string    `json:"output,omitempty"`
	Records int       `json:"records"`
	Stage   string    `json:"stage,omitempty"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}

// Hub fans events out to websocket subscribers.
type Hub struct {
	logger *slog.Logger

	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger,
		subs:   make(map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber. The returned channel is closed by
// Unsubscribe or when the subscriber falls too far behind.
func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber.
func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Publish delivers e to every subscriber without blocking.
func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- e:
		default:
			delete(h.subs, ch)
			close(ch)
			h.logger.Warn("dropping slow event subscriber")
		}
	}
}

// HandleResult publishes a merge event.
func (h *Hub) HandleResult(r worker.Result) {
	e := Event{
		Type:    EventMerge,
		Worker:  r.WorkerID,
		Inputs:  []string{r.Task.First, r.Task.Second},
		Output:  r.Output,
		Records: r.Records,
		Stage:   string(r.Stage),
		At:      time.Now().UTC(),
	}
	if r.Err != nil {
		e.Error = r.Err.Error()
	}
	h.Publish(e)
}

// HandleConvergence publishes a convergence event.
func (h *Hub) HandleConvergence(finalPath string) {
	h.Publish(Event{
		Type:   EventConvergence,
		Output: finalPath,
		At:     time.Now().UTC(),
	})
}
