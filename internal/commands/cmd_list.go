package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/quillmd/quill/internal/core/index"
	"github.com/quillmd/quill/internal/core/todo"
	"github.com/quillmd/quill/internal/quill"
	"github.com/quillmd/quill/pkg/iojson"
)

// ListCmd implements the quill list command.
type ListCmd struct {
	flags *Flags
	app   *quill.App

	status     string
	priority   int
	tag        string
	file       string
	search     string
	sort       string
	limit      int
	jsonOutput bool
}

// NewListCmd creates a new list command.
func NewListCmd(flags *Flags, app *quill.App) *ListCmd {
	return &ListCmd{flags: flags, app: app}
}

// Register adds the list command to the application.
func (cmd *ListCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List todos extracted from the corpus",
		UsageText: "quill list [--status <status>] [--priority <n>] [--tag <tag>] [--file <path>] [--search <text>] [--json]",
		Description: `Scans the corpus and lists matching todos.

Examples:
  quill list
  quill list --status pending --priority 2
  quill list --tag shopping --json
  quill list --search "renew" --sort date`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "status",
				Aliases:     []string{"s"},
				Usage:       "filter by status (all, pending, completed)",
				Value:       string(index.StatusAll),
				Destination: &cmd.status,
			},
			&cli.IntFlag{
				Name:        "priority",
				Aliases:     []string{"p"},
				Usage:       "minimum priority (0-3)",
				Destination: &cmd.priority,
			},
			&cli.StringFlag{
				Name:        "tag",
				Aliases:     []string{"t"},
				Usage:       "filter by tag (exact, case-insensitive)",
				Destination: &cmd.tag,
			},
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "filter by corpus-relative file path",
				Destination: &cmd.file,
			},
			&cli.StringFlag{
				Name:        "search",
				Usage:       "free-text substring over text and context",
				Destination: &cmd.search,
			},
			&cli.StringFlag{
				Name:        "sort",
				Usage:       "sort order (file, priority, date)",
				Value:       string(index.SortFile),
				Destination: &cmd.sort,
			},
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "maximum number of results (0 = unlimited)",
				Destination: &cmd.limit,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ListCmd) run(ctx context.Context, c *cli.Command) error {
	status := index.Status(cmd.status)
	if !status.IsValid() {
		return fmt.Errorf("invalid status %q: must be one of all, pending, completed", cmd.status)
	}
	sort := index.Sort(cmd.sort)
	if !sort.IsValid() {
		return fmt.Errorf("invalid sort %q: must be one of file, priority, date", cmd.sort)
	}

	if _, err := cmd.app.Todos.Rescan(ctx); err != nil {
		return err
	}

	todos := cmd.app.Todos.List(ctx, index.Filter{
		Status:      status,
		MinPriority: cmd.priority,
		Tag:         cmd.tag,
		File:        cmd.file,
		Search:      cmd.search,
		Sort:        sort,
		Limit:       cmd.limit,
	})

	if cmd.jsonOutput {
		for _, t := range todos {
			if err := iojson.WriteLine(c.Root().Writer, t); err != nil {
				return err
			}
		}
		return nil
	}

	for _, t := range todos {
		_, _ = fmt.Fprintln(c.Root().Writer, formatTodo(t))
	}

	return nil
}

func formatTodo(t todo.Todo) string {
	var b strings.Builder

	if t.Completed {
		b.WriteString("[x] ")
	} else {
		b.WriteString("[ ] ")
	}

	fmt.Fprintf(&b, "%s:%d  %s", t.FilePath, t.LineNumber, t.Text)

	if t.Priority > 0 {
		fmt.Fprintf(&b, "  %s", strings.Repeat("!", t.Priority))
	}
	for _, tag := range t.Tags {
		fmt.Fprintf(&b, "  #%s", tag)
	}
	if t.DueDate != "" {
		fmt.Fprintf(&b, "  due %s", t.DueDate)
	}

	return b.String()
}
