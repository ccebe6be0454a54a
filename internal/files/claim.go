package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrClaimConflict indicates the input was already claimed or has vanished.
var ErrClaimConflict = errors.New("claim conflict")

// ClaimError reports which input of a pair could not be claimed.
type ClaimError struct {
	Path string
	Err  error
}

func (e *ClaimError) Error() string {
	return fmt.Sprintf("claim %s: %v", e.Path, e.Err)
}

func (e *ClaimError) Unwrap() error {
	return e.Err
}

// Claim holds both inputs of a task after a successful ClaimPair.
type Claim struct {
	First  Claimed
	Second Claimed
}

// Claimed is one claimed input.
type Claimed struct {
	Name string // Discoverable name, used to derive the symbol
	Path string // Current path, ending in ProcessingSuffix
}

// ClaimPair renames both inputs to their claimed names. The first rename to
// succeed owns the file. On failure the already-renamed sibling, if any, is
// left claimed.
func ClaimPair(dir, first, second string) (Claim, error) {
	a, err := claimOne(dir, first)
	if err != nil {
		return Claim{}, err
	}
	b, err := claimOne(dir, second)
	if err != nil {
		return Claim{}, err
	}
	return Claim{First: a, Second: b}, nil
}

func claimOne(dir, name string) (Claimed, error) {
	src := filepath.Join(dir, name)
	dst := filepath.Join(dir, ClaimedName(name))

	if err := os.Rename(src, dst); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %v", ErrClaimConflict, err)
		}
		return Claimed{}, &ClaimError{Path: src, Err: err}
	}
	return Claimed{Name: name, Path: dst}, nil
}

// Unclaim returns a claimed input to the discoverable state. The target is
// derived from the claimed path.
func Unclaim(c Claimed) error {
	dst := DiscoverableName(c.Path)
	if err := os.Rename(c.Path, dst); err != nil {
		return fmt.Errorf("unclaim %s: %w", c.Name, err)
	}
	return nil
}

// Release removes a fully consumed input.
func Release(c Claimed) error {
	if err := os.Remove(c.Path); err != nil {
		return fmt.Errorf("release %s: %w", c.Name, err)
	}
	return nil
}

// Publish makes a finished merge output visible under its final name.
func Publish(tempPath, finalPath string) error {
	if err := os.Rename(tempPath, finalPath); err != nil {
		return fmt.Errorf("publish %s: %w", filepath.Base(finalPath), err)
	}
	return nil
}

// Promote renames the last surviving file to FinalName and returns the new
// path.
func Promote(dir, name string) (string, error) {
	dst := filepath.Join(dir, FinalName)
	if err := os.Rename(filepath.Join(dir, name), dst); err != nil {
		return "", fmt.Errorf("promote %s: %w", name, err)
	}
	return dst, nil
}
