package quill

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/quillmd/quill/internal/core/index"
	"github.com/quillmd/quill/internal/core/todo"
	"github.com/quillmd/quill/internal/core/writeback"
)

// TodoService owns the current Index snapshot and coordinates scans and
// toggles. Readers always get a whole, consistent snapshot reference;
// writers only ever replace the reference, never mutate in place.
type TodoService struct {
	scanner *Scanner
	engine  *writeback.Engine
	root    string
	log     zerolog.Logger

	mu  sync.RWMutex
	idx *index.Index

	scans singleflight.Group
}

// NewTodoService creates a TodoService. The index starts empty; call
// Rescan before serving queries.
func NewTodoService(scanner *Scanner, engine *writeback.Engine, root string, log zerolog.Logger) *TodoService {
	return &TodoService{
		scanner: scanner,
		engine:  engine,
		root:    root,
		log:     log.With().Str("component", "todo-service").Logger(),
		idx:     index.Empty(),
	}
}

// Snapshot returns the current index generation.
func (s *TodoService) Snapshot() *index.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx
}

// Rescan rebuilds the index from the filesystem and swaps it in.
// Concurrent calls are coalesced: a rescan requested while one is in
// flight is satisfied by the in-flight scan's result.
func (s *TodoService) Rescan(ctx context.Context) (*index.Index, error) {
	v, err, _ := s.scans.Do("scan", func() (any, error) {
		idx, err := s.scanner.Scan()
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.idx = idx
		s.mu.Unlock()
		return idx, nil
	})
	if err != nil {
		return nil, fmt.Errorf("rescan: %w", err)
	}
	return v.(*index.Index), nil
}

// List returns todos from the current snapshot matching the filter.
func (s *TodoService) List(ctx context.Context, f index.Filter) []todo.Todo {
	return s.Snapshot().List(f)
}

// Get returns the todo with the given ID from the current snapshot.
func (s *TodoService) Get(ctx context.Context, id string) (todo.Todo, bool) {
	return s.Snapshot().Get(id)
}

// Stats returns aggregate statistics over the current snapshot.
func (s *TodoService) Stats(ctx context.Context) index.Stats {
	return s.Snapshot().Stats(time.Now())
}

// Tags returns the snapshot's tag frequencies.
func (s *TodoService) Tags(ctx context.Context) []index.TagCount {
	return s.Snapshot().Tags()
}

// Files returns the snapshot's file list.
func (s *TodoService) Files(ctx context.Context) []string {
	return s.Snapshot().Files()
}

// Toggle flips one todo's checkbox on disk, applies the optimistic
// in-memory flip for immediate feedback, and kicks off a background
// rescan whose authoritative result supersedes the optimistic value.
func (s *TodoService) Toggle(ctx context.Context, filePath string, lineNumber int) (writeback.Result, error) {
	res, err := s.engine.Toggle(filePath, lineNumber)
	if err != nil {
		return writeback.Result{}, err
	}

	s.mu.Lock()
	s.idx = s.idx.WithToggled(res.FilePath, res.LineNumber, res.Completed)
	s.mu.Unlock()

	go func() {
		if _, err := s.Rescan(context.Background()); err != nil {
			s.log.Error().Err(err).Msg("post-toggle rescan failed")
		}
	}()

	return res, nil
}

// Outline parses one corpus document into its nested checklist tree.
// The root node's title falls back to the file's base name when the
// document carries no frontmatter title.
func (s *TodoService) Outline(ctx context.Context, filePath string) (*todo.OutlineNode, error) {
	rel := filepath.Clean(filePath)
	if !filepath.IsLocal(rel) {
		return nil, fmt.Errorf("%w: %s", writeback.ErrNotFound, filePath)
	}

	data, err := os.ReadFile(filepath.Join(s.root, rel))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", writeback.ErrNotFound, filePath)
		}
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}

	content := string(data)
	title := todo.ParseFrontmatter(content).Title
	if title == "" {
		title = filepath.Base(rel)
	}

	return todo.BuildOutline(title, content), nil
}
