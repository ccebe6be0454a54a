package files

import (
	"fmt"
	"strings"
	"time"
)

const (
	// ProcessingSuffix marks a claimed input.
	ProcessingSuffix = ".processing"

	// TempSuffix marks a merge output that is still being written.
	TempSuffix = ".tmp"

	// IntermediatePrefix starts the name of every merge output.
	IntermediatePrefix = "INTER_"

	// FinalName is the converged output.
	FinalName = "MultiplexedFile.txt"
)

// IsEligible reports whether name may be scanned and paired.
func IsEligible(name string) bool {
	return !strings.Contains(name, ProcessingSuffix) && !strings.Contains(name, TempSuffix)
}

// IsIntermediate reports whether name is the output of a previous merge.
// Raw inputs that merely contain the prefix, such as WINTER_WHEAT.txt, are
// not.
func IsIntermediate(name string) bool {
	return strings.HasPrefix(name, IntermediatePrefix)
}

// IntermediateName returns the discoverable name of a merge output produced by
// workerID at the given time: INTER_<workerID>_<epochMillis>.
func IntermediateName(workerID string, at time.Time) string {
	return fmt.Sprintf("%s%s_%d", IntermediatePrefix, workerID, at.UnixMilli())
}

// ClaimedName returns the in-progress name of a claimed input.
func ClaimedName(name string) string {
	return name + ProcessingSuffix
}

// DiscoverableName strips the claim suffix, if present. It works on bare
// names and full paths alike.
func DiscoverableName(name string) string {
	return strings.TrimSuffix(name, ProcessingSuffix)
}

// TempName returns the in-progress name of a merge output.
func TempName(name string) string {
	return name + TempSuffix
}
