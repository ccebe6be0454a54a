package worker

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/tickmerge/internal/merge"
)

// Task is one pair of discoverable file names to merge. First is the left
// input and wins timestamp ties.
type Task struct {
	First  string
	Second string
}

func (t Task) String() string {
	return fmt.Sprintf("%s+%s", t.First, t.Second)
}

// Stage names the step of a task that produced a Result.
type Stage string

const (
	StageClaim   Stage = "claim"
	StageMerge   Stage = "merge"
	StageRelease Stage = "release"
	StagePublish Stage = "publish"
	StageDone    Stage = "done"
)

// Result describes the outcome of one task.
type Result struct {
	WorkerID string
	Task     Task
	Output   string // Published file name, empty unless the output was published
	Records  int
	Stats    merge.Stats
	Duration time.Duration
	Stage    Stage // StageDone on success, otherwise the failing step
	Err      error
}

// OK reports whether the task completed without error.
func (r Result) OK() bool {
	return r.Err == nil
}

// ResultHandler receives task results.
type ResultHandler interface {
	HandleResult(Result)
}

// ResultHandlerFunc is a function adapter for ResultHandler.
type ResultHandlerFunc func(Result)

func (f ResultHandlerFunc) HandleResult(r Result) {
	f(r)
}

// Config holds worker configuration.
type Config struct {
	Directory   string // Directory holding the inputs and outputs
	MemoryBytes uint64 // Memory allowance per merge
}

// NewInstanceID returns a short random identifier for this process. Worker
// ids are derived from it so outputs of concurrent processes never collide.
func NewInstanceID() string {
	return uuid.New().String()[:8]
}

// ID returns the identity of the index-th worker of an instance.
func ID(instance string, index int) string {
	return fmt.Sprintf("%s-%d", instance, index)
}
