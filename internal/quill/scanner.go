// Package quill wires the core packages into services consumed by the
// CLI, TUI, and HTTP server.
package quill

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/quillmd/quill/internal/core/config"
	"github.com/quillmd/quill/internal/core/index"
	"github.com/quillmd/quill/internal/core/todo"
)

// Scanner walks the corpus root and builds a complete Index snapshot.
// Scanning is read-only and synchronous: the snapshot is fully built
// before it is handed to anyone, so readers never see partial state.
type Scanner struct {
	cfg *config.Config
	log zerolog.Logger
}

// NewScanner creates a Scanner for the configured corpus.
func NewScanner(cfg *config.Config, log zerolog.Logger) *Scanner {
	return &Scanner{
		cfg: cfg,
		log: log.With().Str("component", "scanner").Logger(),
	}
}

// Scan rebuilds the index from the filesystem. A single unreadable or
// undecodable document is skipped and reported as a warning on the
// snapshot; only a failure to walk the corpus root itself is fatal.
func (s *Scanner) Scan() (*index.Index, error) {
	var (
		todos    []todo.Todo
		titles   = map[string]string{}
		warnings []index.Warning
	)

	warn := func(rel string, err error) {
		s.log.Warn().Err(err).Str("path", rel).Msg("skipping document")
		warnings = append(warnings, index.Warning{Path: rel, Message: err.Error()})
	}

	err := filepath.WalkDir(s.cfg.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.cfg.Dir {
				return err
			}
			rel, _ := filepath.Rel(s.cfg.Dir, path)
			warn(rel, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == s.cfg.Dir {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") || d.Name() == s.cfg.ReservedDir {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(s.cfg.Dir, path)
		if relErr != nil {
			return nil
		}
		if !s.eligible(d.Name(), rel) {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			warn(rel, readErr)
			return nil
		}
		if !utf8.Valid(data) {
			warn(rel, fmt.Errorf("not valid UTF-8 text"))
			return nil
		}

		content := string(data)
		todos = append(todos, todo.ParseDocument(rel, content, s.cfg.ContextLines)...)

		if fm := todo.ParseFrontmatter(content); fm.Title != "" {
			titles[rel] = fm.Title
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus %s: %w", s.cfg.Dir, err)
	}

	idx := index.New(todos, titles, warnings)
	s.log.Debug().
		Int("todos", len(idx.Todos())).
		Int("files", len(idx.Files())).
		Int("warnings", len(warnings)).
		Msg("scan complete")

	return idx, nil
}

// eligible reports whether a file should be parsed: extension match, not
// hidden, and not covered by an exclude glob.
func (s *Scanner) eligible(name, rel string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	if !strings.EqualFold(filepath.Ext(name), s.cfg.Extension) {
		return false
	}
	slashRel := filepath.ToSlash(rel)
	for _, pattern := range s.cfg.Exclude {
		if ok, _ := doublestar.Match(pattern, slashRel); ok {
			return false
		}
	}
	return true
}
