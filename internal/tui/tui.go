// Package tui is the interactive todo browser: a filterable list over
// the current index with in-place toggling and live refresh when the
// corpus changes on disk.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quillmd/quill/internal/core/index"
	"github.com/quillmd/quill/internal/core/todo"
	"github.com/quillmd/quill/internal/core/writeback"
	"github.com/quillmd/quill/internal/quill"
)

type (
	indexMsg  struct{ idx *index.Index }
	toggleMsg struct{ res writeback.Result }
	errMsg    struct{ err error }
	// fsChangeMsg arrives when the corpus watcher reports a change.
	fsChangeMsg struct{}
)

// item adapts a todo for bubbles/list.
type item struct{ t todo.Todo }

func (i item) FilterValue() string { return i.t.Text + " " + strings.Join(i.t.Tags, " ") }

func (i item) Title() string {
	var b strings.Builder
	if i.t.Completed {
		b.WriteString(doneStyle.Render("[x] " + i.t.Text))
	} else {
		b.WriteString("[ ] " + i.t.Text)
	}
	if i.t.Priority > 0 {
		b.WriteString(" " + priorityStyle.Render(strings.Repeat("!", i.t.Priority)))
	}
	for _, tag := range i.t.Tags {
		b.WriteString(" " + tagStyle.Render("#"+tag))
	}
	if i.t.DueDate != "" {
		b.WriteString(" " + dueStyle.Render("due "+i.t.DueDate))
	}
	return b.String()
}

func (i item) Description() string {
	desc := fmt.Sprintf("%s:%d", i.t.FilePath, i.t.LineNumber)
	if i.t.Heading != "" {
		desc += " · " + i.t.Heading
	}
	return desc
}

type keyMap struct {
	Toggle  key.Binding
	Status  key.Binding
	Refresh key.Binding
}

var keys = keyMap{
	Toggle:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "toggle")),
	Status:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "cycle status")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
}

// Model is the bubbletea model for the todo browser.
type Model struct {
	app     *quill.App
	watcher *quill.Watcher // nil when file watching is unavailable

	list   list.Model
	status index.Status
	err    error
}

// New creates the TUI model. watcher may be nil.
func New(app *quill.App, watcher *quill.Watcher) Model {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "quill"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Status, keys.Refresh}
	}

	return Model{app: app, watcher: watcher, list: l, status: index.StatusPending}
}

// Init kicks off the initial scan and, when available, the watcher loop.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.rescan()}
	if m.watcher != nil {
		cmds = append(cmds, m.awaitChange())
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case indexMsg:
		m.err = nil
		m.list.SetItems(m.items(msg.idx))
		return m, nil

	case toggleMsg:
		// The service already applied the optimistic flip; re-render
		// from the updated snapshot while the rescan runs.
		m.list.SetItems(m.items(m.app.Todos.Snapshot()))
		return m, nil

	case fsChangeMsg:
		return m, tea.Batch(m.rescan(), m.awaitChange())

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, keys.Toggle):
			if sel, ok := m.list.SelectedItem().(item); ok {
				return m, m.toggle(sel.t)
			}
		case key.Matches(msg, keys.Status):
			m.status = nextStatus(m.status)
			m.list.SetItems(m.items(m.app.Todos.Snapshot()))
			return m, nil
		case key.Matches(msg, keys.Refresh):
			return m, m.rescan()
		case msg.String() == "q", msg.String() == "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list plus a status line.
func (m Model) View() string {
	stats := m.app.Todos.Snapshot().Stats(time.Now())
	bar := statusBarStyle.Render(fmt.Sprintf(
		"%s · %d pending · %d done · %d overdue",
		m.status, stats.Pending, stats.Completed, stats.Overdue,
	))
	if m.err != nil {
		bar = errorStyle.Render("error: " + m.err.Error())
	}
	return m.list.View() + "\n" + bar
}

func (m Model) items(idx *index.Index) []list.Item {
	todos := idx.List(index.Filter{Status: m.status})
	items := make([]list.Item, len(todos))
	for i, t := range todos {
		items[i] = item{t: t}
	}
	return items
}

func (m Model) rescan() tea.Cmd {
	return func() tea.Msg {
		idx, err := m.app.Todos.Rescan(context.Background())
		if err != nil {
			return errMsg{err: err}
		}
		return indexMsg{idx: idx}
	}
}

func (m Model) toggle(t todo.Todo) tea.Cmd {
	return func() tea.Msg {
		res, err := m.app.Todos.Toggle(context.Background(), t.FilePath, t.LineNumber)
		if err != nil {
			return errMsg{err: err}
		}
		return toggleMsg{res: res}
	}
}

// awaitChange blocks on the watcher's rescan channel. Re-invoked after
// every delivered message to keep listening.
func (m Model) awaitChange() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-m.watcher.Rescans(); !ok {
			return nil
		}
		return fsChangeMsg{}
	}
}

func nextStatus(s index.Status) index.Status {
	switch s {
	case index.StatusPending:
		return index.StatusCompleted
	case index.StatusCompleted:
		return index.StatusAll
	default:
		return index.StatusPending
	}
}
