package index

import (
	"sort"
	"strings"

	"github.com/quillmd/quill/internal/core/todo"
)

// Status selects todos by completion state.
type Status string

const (
	StatusAll       Status = "all"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// IsValid reports whether s is a known status value.
func (s Status) IsValid() bool {
	switch s {
	case StatusAll, StatusPending, StatusCompleted:
		return true
	}
	return false
}

// Sort selects the ordering of filtered results.
type Sort string

const (
	SortFile     Sort = "file"     // file path, then line number (default)
	SortPriority Sort = "priority" // highest priority first
	SortDate     Sort = "date"     // earliest due date first, undated last
)

// IsValid reports whether s is a known sort order.
func (s Sort) IsValid() bool {
	switch s {
	case SortFile, SortPriority, SortDate:
		return true
	}
	return false
}

// Filter selects and orders a subset of the snapshot. The zero value
// selects every non-empty todo in file order.
type Filter struct {
	Status       Status // empty means all
	MinPriority  int    // 0-3
	Tag          string // exact tag, case-insensitive
	File         string // exact corpus-relative path
	Search       string // case-insensitive substring over text and context
	Sort         Sort   // empty means SortFile
	Limit        int    // 0 means unlimited
	IncludeEmpty bool   // keep markers with blank checkbox content
}

// List returns the todos matching the filter. Computed on demand over
// the snapshot; nothing is cached.
func (x *Index) List(f Filter) []todo.Todo {
	var out []todo.Todo
	search := strings.ToLower(f.Search)
	tag := strings.ToLower(f.Tag)

	for _, t := range x.todos {
		if !f.IncludeEmpty && t.RawText == "" {
			continue
		}
		switch f.Status {
		case StatusPending:
			if t.Completed {
				continue
			}
		case StatusCompleted:
			if !t.Completed {
				continue
			}
		}
		if t.Priority < f.MinPriority {
			continue
		}
		if tag != "" && !hasTag(t, tag) {
			continue
		}
		if f.File != "" && t.FilePath != f.File {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Text), search) &&
			!strings.Contains(strings.ToLower(t.Context), search) {
			continue
		}
		out = append(out, t)
	}

	sortTodos(out, f.Sort)

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

func hasTag(t todo.Todo, tag string) bool {
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

func sortTodos(todos []todo.Todo, order Sort) {
	switch order {
	case SortPriority:
		sort.SliceStable(todos, func(i, j int) bool {
			return todos[i].Priority > todos[j].Priority
		})
	case SortDate:
		sort.SliceStable(todos, func(i, j int) bool {
			return dueKey(todos[i]) < dueKey(todos[j])
		})
	}
	// SortFile is the snapshot's natural order.
}

// dueKey sorts undated todos after every dated one. ISO dates compare
// correctly as strings.
func dueKey(t todo.Todo) string {
	if t.DueDate == "" {
		return "9999-12-31"
	}
	return t.DueDate
}
