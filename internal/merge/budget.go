package merge

const (
	// BytesPerRecord is the memory charged for one held record.
	BytesPerRecord = 128

	// MinBudget is the smallest usable budget: one record per input.
	MinBudget = 2
)

// RecordBudget converts a memory allowance into the number of records a
// merge may hold at once.
func RecordBudget(memoryBytes uint64) int {
	n := memoryBytes / BytesPerRecord
	if n < MinBudget {
		return MinBudget
	}
	const maxInt = int(^uint(0) >> 1)
	if n > uint64(maxInt) {
		return maxInt
	}
	return int(n)
}
