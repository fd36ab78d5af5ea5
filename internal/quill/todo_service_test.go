package quill

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillmd/quill/internal/core/config"
	"github.com/quillmd/quill/internal/core/index"
	"github.com/quillmd/quill/internal/core/writeback"
)

func newTestService(t *testing.T) (*TodoService, *config.Config) {
	t.Helper()
	cfg := testConfig(t)
	scanner := NewScanner(cfg, zerolog.Nop())
	engine := writeback.New(cfg.Dir, cfg.MaxFileSize, zerolog.Nop())
	return NewTodoService(scanner, engine, cfg.Dir, zerolog.Nop()), cfg
}

func TestServiceStartsEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	assert.Empty(t, svc.Snapshot().Todos())
}

func TestServiceRescan(t *testing.T) {
	svc, cfg := newTestService(t)
	writeCorpusFile(t, cfg, "a.md", "- [ ] one\n- [x] two\n")

	idx, err := svc.Rescan(context.Background())
	require.NoError(t, err)
	assert.Len(t, idx.Todos(), 2)
	assert.Same(t, idx, svc.Snapshot())

	// A later rescan picks up new content and swaps the snapshot.
	writeCorpusFile(t, cfg, "b.md", "- [ ] three\n")
	next, err := svc.Rescan(context.Background())
	require.NoError(t, err)
	assert.Len(t, next.Todos(), 3)
	assert.NotSame(t, idx, next)
}

func TestServiceQueries(t *testing.T) {
	svc, cfg := newTestService(t)
	writeCorpusFile(t, cfg, "a.md", "- [ ] call plumber #house !!\n- [x] pay bill #bills\n")
	_, err := svc.Rescan(context.Background())
	require.NoError(t, err)

	ctx := context.Background()

	pending := svc.List(ctx, index.Filter{Status: index.StatusPending})
	require.Len(t, pending, 1)
	assert.Equal(t, "call plumber", pending[0].Text)

	got, ok := svc.Get(ctx, pending[0].ID)
	require.True(t, ok)
	assert.Equal(t, pending[0], got)

	stats := svc.Stats(ctx)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.HighPriority)

	tags := svc.Tags(ctx)
	require.Len(t, tags, 2)

	assert.Equal(t, []string{"a.md"}, svc.Files(ctx))
}

func TestServiceToggleWritesAndUpdatesSnapshot(t *testing.T) {
	svc, cfg := newTestService(t)
	writeCorpusFile(t, cfg, "a.md", "- [ ] flip me\n")
	_, err := svc.Rescan(context.Background())
	require.NoError(t, err)

	res, err := svc.Toggle(context.Background(), "a.md", 1)
	require.NoError(t, err)
	assert.True(t, res.Completed)

	// Optimistic update is visible immediately, without waiting for the
	// background rescan.
	todos := svc.Snapshot().ByFile("a.md")
	require.Len(t, todos, 1)
	assert.True(t, todos[0].Completed)

	// The background rescan converges to the same state.
	assert.Eventually(t, func() bool {
		todos := svc.Snapshot().ByFile("a.md")
		return len(todos) == 1 && todos[0].Completed
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServiceToggleStaleReference(t *testing.T) {
	svc, cfg := newTestService(t)
	writeCorpusFile(t, cfg, "a.md", "- [ ] real\nprose line\n")
	_, err := svc.Rescan(context.Background())
	require.NoError(t, err)

	_, err = svc.Toggle(context.Background(), "a.md", 2)
	assert.ErrorIs(t, err, writeback.ErrStaleReference)

	_, err = svc.Toggle(context.Background(), "missing.md", 1)
	assert.ErrorIs(t, err, writeback.ErrNotFound)
}

func TestServiceOutline(t *testing.T) {
	svc, cfg := newTestService(t)
	writeCorpusFile(t, cfg, "plan.md", "---\ntitle: The Plan\n---\n## Phase 1\n- [x] start\n- [ ] finish\n")

	root, err := svc.Outline(context.Background(), "plan.md")
	require.NoError(t, err)
	assert.Equal(t, "The Plan", root.Title)
	assert.Equal(t, 2, root.Total)
	assert.Equal(t, 1, root.Done)

	writeCorpusFile(t, cfg, "bare.md", "- [ ] untitled\n")
	bare, err := svc.Outline(context.Background(), "bare.md")
	require.NoError(t, err)
	assert.Equal(t, "bare.md", bare.Title)
}

func TestServiceOutlineErrors(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Outline(context.Background(), "nope.md")
	assert.ErrorIs(t, err, writeback.ErrNotFound)

	_, err = svc.Outline(context.Background(), "../escape.md")
	assert.ErrorIs(t, err, writeback.ErrNotFound)
}
