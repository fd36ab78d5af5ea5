package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/quillmd/quill/internal/quill"
)

// ScanCmd implements the quill scan command.
type ScanCmd struct {
	flags *Flags
	app   *quill.App
}

// NewScanCmd creates a new scan command.
func NewScanCmd(flags *Flags, app *quill.App) *ScanCmd {
	return &ScanCmd{flags: flags, app: app}
}

// Register adds the scan command to the application.
func (cmd *ScanCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "scan",
		Usage:     "Rebuild the todo index and report what was found",
		UsageText: "quill scan",
		Description: `Performs a full corpus scan and prints a summary. Files that could
not be read are reported as warnings; they never abort the scan.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *ScanCmd) run(ctx context.Context, c *cli.Command) error {
	idx, err := cmd.app.Todos.Rescan(ctx)
	if err != nil {
		return err
	}

	w := c.Root().Writer
	_, _ = fmt.Fprintf(w, "scanned %d files, found %d todos\n", len(idx.Files()), len(idx.Todos()))

	for _, warning := range idx.Warnings() {
		_, _ = fmt.Fprintf(w, "warning: %s: %s\n", warning.Path, warning.Message)
	}

	return nil
}
