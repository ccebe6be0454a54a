package files

import (
	"fmt"
	"os"
)

// Scan lists the discoverable regular files in dir, in directory order
// (sorted by name). Claimed and temporary files are excluded.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if !IsEligible(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
