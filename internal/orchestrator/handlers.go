package orchestrator

import "github.com/rickgao/tickmerge/internal/worker"

// Handlers fans results, rounds and convergences out to every member that
// implements the matching interface.
type Handlers []worker.ResultHandler

// HandleResult forwards r to every member.
func (hs Handlers) HandleResult(r worker.Result) {
	for _, h := range hs {
		h.HandleResult(r)
	}
}

// ObserveRound forwards r to members implementing RoundObserver.
func (hs Handlers) ObserveRound(r RoundResult) {
	for _, h := range hs {
		if obs, ok := h.(RoundObserver); ok {
			obs.ObserveRound(r)
		}
	}
}

// HandleConvergence forwards finalPath to members implementing
// ConvergenceHandler.
func (hs Handlers) HandleConvergence(finalPath string) {
	for _, h := range hs {
		if ch, ok := h.(ConvergenceHandler); ok {
			ch.HandleConvergence(finalPath)
		}
	}
}
