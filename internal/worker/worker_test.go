package worker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/tickmerge/internal/files"
	"github.com/rickgao/tickmerge/internal/model"
	"github.com/rickgao/tickmerge/internal/queue"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func rawFile(lines ...string) string {
	return model.Header + "\n" + strings.Join(lines, "\n") + "\n"
}

func newTestWorker(t *testing.T, dir string, q *queue.Queue[Task], h ResultHandler) *Worker {
	t.Helper()
	if q == nil {
		q = queue.New[Task](4)
	}
	return New(Config{Directory: dir, MemoryBytes: 1024}, "test-0", q, h, nil)
}

func TestProcess_Success(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "A.txt", rawFile("AAA, 2024-01-01 10:00:00, 1.0, 10, NYSE, T"))
	writeFile(t, dir, "B.txt", rawFile("BBB, 2024-01-01 09:00:00, 2.0, 20, NYSE, T"))

	w := newTestWorker(t, dir, nil, nil)
	res := w.Process(context.Background(), Task{First: "A.txt", Second: "B.txt"})

	require.NoError(t, res.Err)
	assert.Equal(t, StageDone, res.Stage)
	assert.Equal(t, 2, res.Records)
	assert.True(t, files.IsIntermediate(res.Output))
	assert.True(t, strings.HasPrefix(res.Output, "INTER_test-0_"))

	names, err := files.Scan(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{res.Output}, names)

	data, err := os.ReadFile(filepath.Join(dir, res.Output))
	require.NoError(t, err)
	assert.Equal(t, rawFile(
		"BBB, 2024-01-01 09:00:00, 2.0, 20, NYSE, T",
		"AAA, 2024-01-01 10:00:00, 1.0, 10, NYSE, T",
	), string(data))
}

func TestProcess_ClaimConflict(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "A.txt", rawFile("AAA, 2024-01-01 10:00:00, 1.0, 10, NYSE, T"))

	w := newTestWorker(t, dir, nil, nil)
	res := w.Process(context.Background(), Task{First: "A.txt", Second: "B.txt"})

	assert.Equal(t, StageClaim, res.Stage)
	assert.ErrorIs(t, res.Err, files.ErrClaimConflict)
	assert.Empty(t, res.Output)
	assert.FileExists(t, filepath.Join(dir, "A.txt.processing"))
}

func TestProcess_MergeFailureUnclaims(t *testing.T) {
	dir := t.TempDir()
	// A directory can be claimed but not read.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "A.txt"), 0o755))
	writeFile(t, dir, "B.txt", rawFile("BBB, 2024-01-01 09:00:00, 2.0, 20, NYSE, T"))

	w := newTestWorker(t, dir, nil, nil)
	res := w.Process(context.Background(), Task{First: "A.txt", Second: "B.txt"})

	assert.Equal(t, StageMerge, res.Stage)
	assert.Error(t, res.Err)
	assert.DirExists(t, filepath.Join(dir, "A.txt"))
	assert.FileExists(t, filepath.Join(dir, "B.txt"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), files.TempSuffix), "partial output %s left behind", e.Name())
	}
}

func TestNextOutputName_StrictlyIncreasing(t *testing.T) {
	w := newTestWorker(t, t.TempDir(), nil, nil)
	fixed := time.UnixMilli(1704103200000)
	w.now = func() time.Time { return fixed }

	first := w.nextOutputName()
	second := w.nextOutputName()
	third := w.nextOutputName()

	assert.Equal(t, "INTER_test-0_1704103200000", first)
	assert.Equal(t, "INTER_test-0_1704103200001", second)
	assert.Equal(t, "INTER_test-0_1704103200002", third)
}

func TestID(t *testing.T) {
	instance := NewInstanceID()
	assert.Len(t, instance, 8)
	assert.Equal(t, instance+"-3", ID(instance, 3))
	assert.NotEqual(t, instance, NewInstanceID())
}

func TestRun_ReportsResultsUntilClosed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "A.txt", rawFile("AAA, 2024-01-01 10:00:00, 1.0, 10, NYSE, T"))
	writeFile(t, dir, "B.txt", rawFile("BBB, 2024-01-01 09:00:00, 2.0, 20, NYSE, T"))
	writeFile(t, dir, "C.txt", rawFile("CCC, 2024-01-01 08:00:00, 3.0, 30, NYSE, T"))
	writeFile(t, dir, "D.txt", rawFile("DDD, 2024-01-01 11:00:00, 4.0, 40, NYSE, T"))

	var mu sync.Mutex
	var results []Result
	handler := ResultHandlerFunc(func(r Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	})

	q := queue.New[Task](2)
	w := newTestWorker(t, dir, q, handler)

	q.Push(Task{First: "A.txt", Second: "B.txt"})
	q.Push(Task{First: "C.txt", Second: "D.txt"})
	q.Close()

	require.NoError(t, w.Run(context.Background()))

	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.OK(), "task %s failed: %v", r.Task, r.Err)
	}
	assert.NotEqual(t, results[0].Output, results[1].Output)

	names, err := files.Scan(dir)
	require.NoError(t, err)
	assert.Len(t, names, 2)
}
