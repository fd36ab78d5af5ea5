// Package index holds the derived todo snapshot: the ordered todo
// collection plus secondary views over it. An Index is immutable once
// built; rescans replace the whole snapshot rather than patching it.
package index

import (
	"sort"
	"time"

	"github.com/quillmd/quill/internal/core/todo"
)

// Warning records a per-file scan failure. One bad file never blanks
// the whole index; it is skipped and reported here.
type Warning struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Index is one generation of the derived todo snapshot.
type Index struct {
	generatedAt time.Time
	todos       []todo.Todo
	byFile      map[string][]todo.Todo
	tagCounts   map[string]int
	fileTitles  map[string]string
	warnings    []Warning
}

// New builds an Index from unordered todos. Ordering is normalized to
// (file path, line number); secondary views are built once here.
func New(todos []todo.Todo, fileTitles map[string]string, warnings []Warning) *Index {
	sorted := make([]todo.Todo, len(todos))
	copy(sorted, todos)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].FilePath != sorted[j].FilePath {
			return sorted[i].FilePath < sorted[j].FilePath
		}
		return sorted[i].LineNumber < sorted[j].LineNumber
	})

	idx := &Index{
		generatedAt: time.Now(),
		todos:       sorted,
		byFile:      map[string][]todo.Todo{},
		tagCounts:   map[string]int{},
		fileTitles:  fileTitles,
		warnings:    warnings,
	}

	for _, t := range sorted {
		idx.byFile[t.FilePath] = append(idx.byFile[t.FilePath], t)
		for _, tag := range t.Tags {
			idx.tagCounts[tag]++
		}
	}

	return idx
}

// Empty returns an index with no todos, used before the first scan.
func Empty() *Index {
	return New(nil, nil, nil)
}

// GeneratedAt returns when this snapshot was built.
func (x *Index) GeneratedAt() time.Time { return x.generatedAt }

// Todos returns all todos in stable order. The returned slice is shared;
// callers must not mutate it.
func (x *Index) Todos() []todo.Todo { return x.todos }

// ByFile returns the ordered todos of one file.
func (x *Index) ByFile(path string) []todo.Todo { return x.byFile[path] }

// Get returns the todo with the given ID.
func (x *Index) Get(id string) (todo.Todo, bool) {
	for _, t := range x.todos {
		if t.ID == id {
			return t, true
		}
	}
	return todo.Todo{}, false
}

// Files returns the sorted list of files that contain todos.
func (x *Index) Files() []string {
	files := make([]string, 0, len(x.byFile))
	for f := range x.byFile {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// FileTitle returns a file's frontmatter title, or "" when absent.
func (x *Index) FileTitle(path string) string { return x.fileTitles[path] }

// Warnings returns the per-file failures reported by the scan that
// produced this snapshot.
func (x *Index) Warnings() []Warning { return x.warnings }

// TagCount is one entry of the tag frequency view.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Tags returns tag frequencies sorted by count descending, then name.
func (x *Index) Tags() []TagCount {
	tags := make([]TagCount, 0, len(x.tagCounts))
	for name, count := range x.tagCounts {
		tags = append(tags, TagCount{Name: name, Count: count})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Name < tags[j].Name
	})
	return tags
}

// WithToggled returns a new snapshot with the matching todo's completion
// flipped to completed. This is the optimistic post-toggle overlay: it
// is provisional and gets discarded wholesale by the next rescan.
func (x *Index) WithToggled(filePath string, lineNumber int, completed bool) *Index {
	todos := make([]todo.Todo, len(x.todos))
	copy(todos, x.todos)
	for i := range todos {
		if todos[i].FilePath == filePath && todos[i].LineNumber == lineNumber {
			todos[i].Completed = completed
			break
		}
	}
	return New(todos, x.fileTitles, x.warnings)
}
