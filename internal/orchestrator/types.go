package orchestrator

import "time"

// Config holds orchestrator configuration.
type Config struct {
	Directory      string
	Workers        int           // Number of workers (>= 1)
	MemoryBytes    uint64        // Memory allowance per merge
	PollInterval   time.Duration // Delay between rounds (default: 5s)
	WarmUp         time.Duration // Delay before the first round (default: 1s)
	ExitOnConverge bool          // Stop after the first convergence
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:      1,
		PollInterval: 5 * time.Second,
		WarmUp:       time.Second,
	}
}

// RoundResult summarizes one round.
type RoundResult struct {
	Files      int    // Discoverable files not already part of a task
	Dispatched int    // Tasks pushed this round
	InFlight   int    // Tasks dispatched earlier and not yet reported
	Final      string // Path of the final output if this round converged
	Err        error
}

// Converged reports whether the round produced the final output.
func (r RoundResult) Converged() bool {
	return r.Final != ""
}

// Stats is a point-in-time view used by health checks.
type Stats struct {
	Workers      int
	QueueDepth   int
	InFlight     int
	Rounds       int64
	Convergences int64
}

// RoundObserver is optionally implemented by the result handler to observe
// every round.
type RoundObserver interface {
	ObserveRound(RoundResult)
}

// ConvergenceHandler is optionally implemented by the result handler to be
// told when the final output is produced.
type ConvergenceHandler interface {
	HandleConvergence(finalPath string)
}
