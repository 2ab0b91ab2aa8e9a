package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-assets/internal/common"
	"github.com/joseph-ayodele/invoice-assets/internal/core/async"
	"github.com/joseph-ayodele/invoice-assets/internal/repository"
)

func newIngestor(t *testing.T) *FSIngestor {
	t.Helper()
	db, err := repository.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "i.db"), nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, repository.Migrate(db, filepath.Join("..", "..", "db", "migrations"), nil))
	return NewFSIngestor(repository.NewSourceFileRepository(db, nil), nil)
}

func write(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngestPath_Dedup(t *testing.T) {
	ing := newIngestor(t)
	dir := t.TempDir()
	a := write(t, filepath.Join(dir, "a.PDF"), "same bytes")
	b := write(t, filepath.Join(dir, "b.pdf"), "same bytes")

	first, err := ing.IngestPath(context.Background(), a)
	require.NoError(t, err)
	assert.False(t, first.Duplicate)
	assert.Equal(t, "pdf", first.Ext)
	assert.Len(t, first.ContentHash, 64)

	second, err := ing.IngestPath(context.Background(), b)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.FileID, second.FileID)
}

func TestIngestPath_RejectsExtension(t *testing.T) {
	ing := newIngestor(t)
	p := write(t, filepath.Join(t.TempDir(), "notes.docx"), "x")
	_, err := ing.IngestPath(context.Background(), p)
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestIngestDirectory(t *testing.T) {
	ing := newIngestor(t)
	root := t.TempDir()
	write(t, filepath.Join(root, "one.pdf"), "1")
	write(t, filepath.Join(root, "sub", "two.png"), "2")
	write(t, filepath.Join(root, "sub", "copy.txt"), "1")
	write(t, filepath.Join(root, "skip.docx"), "3")
	write(t, filepath.Join(root, ".hidden", "three.pdf"), "4")
	write(t, filepath.Join(root, ".dotfile.pdf"), "5")

	results, stats, err := ing.IngestDirectory(context.Background(), root, true)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Invoices)
	assert.EqualValues(t, 3, stats.Registered)
	assert.EqualValues(t, 1, stats.Duplicates)
	assert.EqualValues(t, 0, stats.Failed)
	assert.Len(t, results, 3)

	_, _, err = ing.IngestDirectory(context.Background(), " ", true)
	assert.Error(t, err)
}

type recordingQueue struct {
	mu   sync.Mutex
	jobs []async.Job
}

func (q *recordingQueue) Enqueue(_ context.Context, job async.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) Shutdown(context.Context) {}

func (q *recordingQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func TestInbox_QueuesNewContentOnce(t *testing.T) {
	q := &recordingQueue{}
	in := NewInbox(newIngestor(t), q, nil)
	dir := t.TempDir()

	first := write(t, filepath.Join(dir, "a.pdf"), "bill")
	require.NoError(t, in.Handle(context.Background(), first))
	require.NoError(t, in.Handle(context.Background(), write(t, filepath.Join(dir, "b.pdf"), "bill")))
	require.NoError(t, in.Handle(context.Background(), filepath.Join(dir, "gone.pdf")))

	require.Equal(t, 1, q.len())
	job := q.jobs[0]
	abs, err := filepath.Abs(first)
	require.NoError(t, err)
	assert.Equal(t, abs, job.Path)
	assert.Len(t, job.ContentHash, 64)
	assert.False(t, job.QueuedAt.IsZero())
}

func TestWatcher_DebouncesAndFilters(t *testing.T) {
	dir := t.TempDir()
	existing := write(t, filepath.Join(dir, "old.pdf"), "old")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}, InitialScan: true, Debounce: 50 * time.Millisecond}, nil)
	require.NoError(t, err)

	select {
	case p := <-events:
		assert.Equal(t, existing, p)
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan did not emit")
	}

	fresh := filepath.Join(dir, "new.pdf")
	write(t, fresh, "create and write arrive as separate events")
	write(t, filepath.Join(dir, "ignored.docx"), "x")

	select {
	case p := <-events:
		assert.Equal(t, fresh, p)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not emit new file")
	}

	select {
	case p := <-events:
		t.Fatalf("unexpected extra event %q", p)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	require.Eventually(t, func() bool {
		_, ok := <-events
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}
