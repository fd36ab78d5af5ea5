package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/quillmd/quill/internal/quill"
	"github.com/quillmd/quill/pkg/iojson"
)

// StatsCmd implements the quill stats command.
type StatsCmd struct {
	flags *Flags
	app   *quill.App
}

// NewStatsCmd creates a new stats command.
func NewStatsCmd(flags *Flags, app *quill.App) *StatsCmd {
	return &StatsCmd{flags: flags, app: app}
}

// Register adds the stats command to the application.
func (cmd *StatsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "stats",
		Usage:     "Show aggregate todo statistics",
		UsageText: "quill stats",
		Description: `Scans the corpus and prints totals, completion rate, high-priority
and overdue counts, plus per-file and per-tag breakdowns as JSON.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *StatsCmd) run(ctx context.Context, c *cli.Command) error {
	if _, err := cmd.app.Todos.Rescan(ctx); err != nil {
		return err
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, cmd.app.Todos.Stats(ctx))
}
