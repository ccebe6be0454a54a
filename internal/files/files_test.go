package files

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIsEligible(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"AAPL.txt", true},
		{"INTER_w-0_1704103200000", true},
		{FinalName, true},
		{"AAPL.txt.processing", false},
		{"INTER_w-0_1704103200000.tmp", false},
		{"x.tmp.old", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEligible(tt.name))
		})
	}
}

func TestIntermediateName(t *testing.T) {
	at := time.UnixMilli(1704103200123)
	name := IntermediateName("ab12cd34-3", at)

	assert.Equal(t, "INTER_ab12cd34-3_1704103200123", name)
	assert.True(t, IsIntermediate(name))
	assert.False(t, IsIntermediate("AAPL.txt"))
	assert.False(t, IsIntermediate("WINTER_WHEAT.txt"))
	assert.False(t, IsIntermediate("FOO_INTER_1"))
}

func TestClaimedAndDiscoverableNames(t *testing.T) {
	assert.Equal(t, "AAPL.txt.processing", ClaimedName("AAPL.txt"))
	assert.Equal(t, "AAPL.txt", DiscoverableName("AAPL.txt.processing"))
	assert.Equal(t, "AAPL.txt", DiscoverableName("AAPL.txt"))
	assert.Equal(t, "INTER_x_1.tmp", TempName("INTER_x_1"))
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "B.txt", "")
	writeFile(t, dir, "A.txt", "")
	writeFile(t, dir, "C.txt.processing", "")
	writeFile(t, dir, "INTER_w-0_5.tmp", "")
	writeFile(t, dir, "INTER_w-0_4", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	names, err := Scan(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.txt", "B.txt", "INTER_w-0_4"}, names)
}

func TestScan_MissingDirectory(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestClaimPair(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "A.txt", "a")
	writeFile(t, dir, "B.txt", "b")

	claim, err := ClaimPair(dir, "A.txt", "B.txt")
	require.NoError(t, err)

	assert.Equal(t, "A.txt", claim.First.Name)
	assert.Equal(t, filepath.Join(dir, "A.txt.processing"), claim.First.Path)
	assert.Equal(t, "B.txt", claim.Second.Name)
	assert.FileExists(t, claim.First.Path)
	assert.FileExists(t, claim.Second.Path)
	assert.NoFileExists(t, filepath.Join(dir, "A.txt"))

	names, err := Scan(dir)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestClaimPair_SecondMissingLeavesFirstClaimed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "A.txt", "a")

	_, err := ClaimPair(dir, "A.txt", "B.txt")
	require.Error(t, err)

	var claimErr *ClaimError
	require.True(t, errors.As(err, &claimErr))
	assert.Equal(t, filepath.Join(dir, "B.txt"), claimErr.Path)
	assert.ErrorIs(t, err, ErrClaimConflict)

	// No rollback of the sibling.
	assert.FileExists(t, filepath.Join(dir, "A.txt.processing"))
}

func TestClaimPair_AlreadyClaimed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "A.txt", "a")
	writeFile(t, dir, "B.txt", "b")

	_, err := ClaimPair(dir, "A.txt", "B.txt")
	require.NoError(t, err)

	_, err = ClaimPair(dir, "A.txt", "B.txt")
	assert.ErrorIs(t, err, ErrClaimConflict)
}

func TestClaimPair_ConcurrentClaimers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "A.txt", "a")
	writeFile(t, dir, "B.txt", "b")

	const claimers = 16
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := ClaimPair(dir, "A.txt", "B.txt"); err == nil {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load(), "exactly one claimer may own the pair")
}

func TestUnclaimAndRelease(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "A.txt", "a")
	writeFile(t, dir, "B.txt", "b")

	claim, err := ClaimPair(dir, "A.txt", "B.txt")
	require.NoError(t, err)

	require.NoError(t, Unclaim(claim.First))
	assert.FileExists(t, filepath.Join(dir, "A.txt"))

	require.NoError(t, Release(claim.Second))
	assert.NoFileExists(t, claim.Second.Path)

	assert.Error(t, Release(claim.Second), "releasing twice must fail")
}

func TestUnclaim_UsesClaimedPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ClaimedName("INTER_w-0_7"), "x")

	require.NoError(t, Unclaim(Claimed{Path: path}))
	assert.FileExists(t, filepath.Join(dir, "INTER_w-0_7"))
	assert.NoFileExists(t, path)
}

func TestPublishAndPromote(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "INTER_w-0_1")
	temp := writeFile(t, dir, TempName("INTER_w-0_1"), "merged")

	names, err := Scan(dir)
	require.NoError(t, err)
	assert.Empty(t, names, "temp output must not be discoverable")

	require.NoError(t, Publish(temp, final))
	names, err = Scan(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"INTER_w-0_1"}, names)

	path, err := Promote(dir, "INTER_w-0_1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FinalName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "merged", string(data))
}
