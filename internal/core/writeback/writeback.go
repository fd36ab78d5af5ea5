// Package writeback flips checkbox tokens in place on disk. It is the
// only component that mutates the corpus: one line of one document per
// successful call, every other byte preserved.
package writeback

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/quillmd/quill/internal/core/todo"
	"github.com/rs/zerolog"
)

var (
	// ErrNotFound is returned when the referenced document no longer exists.
	ErrNotFound = errors.New("document not found")
	// ErrStaleReference is returned when the referenced line no longer
	// parses as a task marker. The caller must rescan and retry with a
	// fresh reference; the engine never guesses.
	ErrStaleReference = errors.New("stale todo reference")
	// ErrTooLarge is returned when the document exceeds the configured
	// size guard. Fails closed: nothing is read or written.
	ErrTooLarge = errors.New("document exceeds size limit")
)

// Result reports the outcome of a successful toggle.
type Result struct {
	FilePath   string `json:"file"`
	LineNumber int    `json:"line_number"`
	Completed  bool   `json:"completed"`
}

// Engine performs validated, atomic checkbox toggles against documents
// under a corpus root. Toggles against the same document are serialized
// with a per-path mutex; different documents proceed in parallel.
type Engine struct {
	root    string
	maxSize int64 // 0 = unlimited
	log     zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an Engine rooted at the corpus directory.
func New(root string, maxSize int64, log zerolog.Logger) *Engine {
	return &Engine{
		root:    root,
		maxSize: maxSize,
		log:     log.With().Str("component", "writeback").Logger(),
		locks:   map[string]*sync.Mutex{},
	}
}

// Toggle flips the checkbox on the given corpus-relative path and
// 1-based line number. The target line must still parse as a task
// marker; otherwise ErrStaleReference is returned and nothing is
// written. On success exactly one document has been rewritten via an
// atomic rename, with every line other than the target byte-identical
// to the input and the original line terminators preserved.
func (e *Engine) Toggle(filePath string, lineNumber int) (Result, error) {
	rel := filepath.Clean(filePath)
	if !filepath.IsLocal(rel) {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, filePath)
	}

	lock := e.pathLock(rel)
	lock.Lock()
	defer lock.Unlock()

	abs := filepath.Join(e.root, rel)

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, fmt.Errorf("%w: %s", ErrNotFound, filePath)
		}
		return Result{}, fmt.Errorf("stat %s: %w", filePath, err)
	}
	if e.maxSize > 0 && info.Size() > e.maxSize {
		return Result{}, fmt.Errorf("%w: %s (%d bytes)", ErrTooLarge, filePath, info.Size())
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", filePath, err)
	}

	lines := splitKeepEnds(string(data))
	if lineNumber < 1 || lineNumber > len(lines) {
		return Result{}, fmt.Errorf("%w: %s:%d is out of bounds", ErrStaleReference, filePath, lineNumber)
	}

	text, terminator := cutTerminator(lines[lineNumber-1])
	offset, completed, ok := todo.CheckboxIndex(text)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s:%d is no longer a task marker", ErrStaleReference, filePath, lineNumber)
	}

	state := byte('x')
	if completed {
		state = ' '
	}
	lines[lineNumber-1] = text[:offset] + string(state) + text[offset+1:] + terminator

	if err := e.writeAtomic(abs, strings.Join(lines, ""), info.Mode().Perm()); err != nil {
		return Result{}, err
	}

	e.log.Debug().
		Str("path", rel).
		Int("line", lineNumber).
		Bool("completed", !completed).
		Msg("toggled todo")

	return Result{FilePath: rel, LineNumber: lineNumber, Completed: !completed}, nil
}

// writeAtomic writes content to a temp file in the target's directory
// and renames it over the original, so readers never observe a torn
// document and a crash mid-write leaves the original untouched.
func (e *Engine) writeAtomic(abs, content string, perm os.FileMode) error {
	dir := filepath.Dir(abs)

	tmp, err := os.CreateTemp(dir, ".quill-toggle-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.WriteString(content); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file over %s: %w", abs, err)
	}

	return nil
}

// pathLock returns the mutex serializing writes to one document.
func (e *Engine) pathLock(rel string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.locks[rel]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[rel] = lock
	}
	return lock
}

// splitKeepEnds splits content into lines with their terminators
// attached, so rejoining with no separator reproduces the input
// byte-for-byte regardless of CRLF/LF convention or a missing final
// newline.
func splitKeepEnds(s string) []string {
	var lines []string
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			if s != "" {
				lines = append(lines, s)
			}
			return lines
		}
		lines = append(lines, s[:i+1])
		s = s[i+1:]
	}
}

// cutTerminator splits a line into its text and trailing terminator.
func cutTerminator(line string) (text, terminator string) {
	if strings.HasSuffix(line, "\r\n") {
		return line[:len(line)-2], "\r\n"
	}
	if strings.HasSuffix(line, "\n") {
		return line[:len(line)-1], "\n"
	}
	return line, ""
}
