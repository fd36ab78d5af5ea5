package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/quillmd/quill/internal/core/writeback"
	"github.com/quillmd/quill/internal/quill"
	"github.com/quillmd/quill/pkg/iojson"
)

// ToggleCmd implements the quill toggle command.
type ToggleCmd struct {
	flags *Flags
	app   *quill.App
}

// NewToggleCmd creates a new toggle command.
func NewToggleCmd(flags *Flags, app *quill.App) *ToggleCmd {
	return &ToggleCmd{flags: flags, app: app}
}

// Register adds the toggle command to the application.
func (cmd *ToggleCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "toggle",
		Usage:     "Toggle a todo's checkbox in its source document",
		UsageText: "quill toggle <file> <line>",
		Description: `Flips the checkbox token on one line of one document. Every other
byte of the document is preserved, and the write is atomic.

The file path is corpus-relative and the line number 1-based, as
reported by quill list.

Examples:
  quill toggle notes/shopping.md 12`,
		Action: cmd.run,
	})

	return app
}

func (cmd *ToggleCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: quill toggle <file> <line>")
	}

	file := c.Args().Get(0)
	line, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return fmt.Errorf("invalid line number %q", c.Args().Get(1))
	}

	res, err := cmd.app.Todos.Toggle(ctx, file, line)
	if err != nil {
		if errors.Is(err, writeback.ErrStaleReference) {
			return fmt.Errorf("%w; run 'quill list' again and retry with a fresh line number", err)
		}
		return err
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, res)
}
