package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/quillmd/quill/internal/core/todo"
	"github.com/quillmd/quill/internal/quill"
	"github.com/quillmd/quill/pkg/iojson"
)

// OutlineCmd implements the quill outline command.
type OutlineCmd struct {
	flags *Flags
	app   *quill.App

	jsonOutput bool
}

// NewOutlineCmd creates a new outline command.
func NewOutlineCmd(flags *Flags, app *quill.App) *OutlineCmd {
	return &OutlineCmd{flags: flags, app: app}
}

// Register adds the outline command to the application.
func (cmd *OutlineCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "outline",
		Usage:     "Show one document's nested checklist structure",
		UsageText: "quill outline <file> [--json]",
		Description: `Parses a document into its checklist tree: headings nest by level,
bold markers act as sub-section headers over deeper-indented markers,
and completion counts roll up per section.

Examples:
  quill outline projects/house.md
  quill outline projects/house.md --json`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the tree as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *OutlineCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: quill outline <file>")
	}

	outline, err := cmd.app.Todos.Outline(ctx, c.Args().Get(0))
	if err != nil {
		return err
	}

	if cmd.jsonOutput {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, outline)
	}

	printOutline(c.Root().Writer, outline, 0)
	return nil
}

func printOutline(w io.Writer, n *todo.OutlineNode, depth int) {
	indent := strings.Repeat("  ", depth)

	if n.Kind == todo.NodeTask {
		mark := " "
		if n.Completed {
			mark = "x"
		}
		_, _ = fmt.Fprintf(w, "%s[%s] %s\n", indent, mark, n.Title)
		return
	}

	_, _ = fmt.Fprintf(w, "%s%s (%d/%d)\n", indent, n.Title, n.Done, n.Total)
	for _, child := range n.Children {
		printOutline(w, child, depth+1)
	}
}
