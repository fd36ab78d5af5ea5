package quill

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherShouldIgnore(t *testing.T) {
	cfg := testConfig(t)
	w, err := NewWatcher(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer w.Close()

	tests := []struct {
		path   string
		ignore bool
	}{
		{path: "notes.md", ignore: false},
		{path: "sub/notes.MD", ignore: false},
		{path: "README", ignore: false},
		{path: ".notes.md.swp", ignore: true},
		{path: "notes.md.tmp", ignore: true},
		{path: "notes.md~", ignore: true},
		{path: ".quill-toggle-123", ignore: true},
		{path: "photo.png", ignore: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.ignore, w.shouldIgnore(tt.path))
		})
	}
}

func TestWatcherSignalsOnWrite(t *testing.T) {
	cfg := testConfig(t)
	cfg.Watcher.Debounce = 20 * time.Millisecond

	w, err := NewWatcher(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.Dir, "new.md"), []byte("- [ ] task\n"), 0o644))

	select {
	case <-w.Rescans():
	case <-time.After(5 * time.Second):
		t.Fatal("no rescan signal after file write")
	}
}

func TestWatcherCollapsesBursts(t *testing.T) {
	cfg := testConfig(t)
	cfg.Watcher.Debounce = 50 * time.Millisecond

	w, err := NewWatcher(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	for range 5 {
		name := filepath.Join(cfg.Dir, "burst.md")
		require.NoError(t, os.WriteFile(name, []byte("- [ ] edit\n"), 0o644))
	}

	select {
	case <-w.Rescans():
	case <-time.After(5 * time.Second):
		t.Fatal("no rescan signal after burst")
	}

	// The burst lands inside one debounce window; the channel holds at
	// most one more pending signal, never one per event.
	time.Sleep(3 * cfg.Watcher.Debounce)
	extra := 0
	for {
		select {
		case <-w.Rescans():
			extra++
			continue
		default:
		}
		break
	}
	assert.LessOrEqual(t, extra, 1)
}
