package quill

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/quillmd/quill/internal/core/config"
)

// Watcher converts raw filesystem events under the corpus root into
// debounced "rescan now" signals. It carries no scan logic of its own:
// consumers read Rescans() and call TodoService.Rescan. The channel has
// a one-slot buffer, so bursts collapse into a single pending signal.
type Watcher struct {
	watcher  *fsnotify.Watcher
	cfg      *config.Config
	debounce time.Duration
	log      zerolog.Logger
	signals  chan struct{}
}

// NewWatcher creates a recursive watcher over the corpus root.
func NewWatcher(cfg *config.Config, log zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		cfg:      cfg,
		debounce: cfg.Watcher.Debounce,
		log:      log.With().Str("component", "watcher").Logger(),
		signals:  make(chan struct{}, 1),
	}

	if err := w.addRecursive(cfg.Dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return w, nil
}

// Rescans returns the channel on which debounced rescan signals are
// delivered.
func (w *Watcher) Rescans() <-chan struct{} {
	return w.signals
}

// Run processes filesystem events until ctx is canceled or the watcher
// is closed. Call it in its own goroutine.
func (w *Watcher) Run(ctx context.Context) {
	var debounce *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.shouldIgnore(event.Name) {
				continue
			}

			w.log.Debug().
				Str("path", event.Name).
				Str("op", event.Op.String()).
				Msg("file system event")

			// Track new directories for recursive watching
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}

			// Debounce: (re)arm the timer so rapid edit bursts
			// produce one signal.
			if debounce == nil {
				debounce = time.NewTimer(w.debounce)
				fire = debounce.C
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(w.debounce)
			}

		case <-fire:
			debounce = nil
			fire = nil
			select {
			case w.signals <- struct{}{}:
			default: // a signal is already pending
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("watcher error")
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) addRecursive(path string) error {
	return filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			w.log.Debug().Err(err).Str("path", p).Msg("skipping path during walk")
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if p != path && (strings.HasPrefix(name, ".") || name == w.cfg.ReservedDir) {
				return filepath.SkipDir
			}
			return w.watcher.Add(p)
		}
		return nil
	})
}

func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}

	for _, suffix := range []string{".tmp", ".lock", ".swp", ".swx", "~"} {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}

	ext := filepath.Ext(path)
	return ext != "" && !strings.EqualFold(ext, w.cfg.Extension)
}
