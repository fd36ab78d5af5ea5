package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/quillmd/quill/internal/quill"
	"github.com/quillmd/quill/internal/tui"
)

// TuiCmd runs the interactive todo browser. It is the default action
// when quill is invoked with no subcommand.
type TuiCmd struct {
	flags *Flags
	app   *quill.App
}

// NewTuiCmd creates a new tui command.
func NewTuiCmd(flags *Flags, app *quill.App) *TuiCmd {
	return &TuiCmd{flags: flags, app: app}
}

// Run starts the TUI.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	watcher, err := quill.NewWatcher(cmd.app.Config, log.Logger)
	if err != nil {
		log.Warn().Err(err).Msg("file watching disabled")
		watcher = nil
	} else {
		defer func() { _ = watcher.Close() }()
		go watcher.Run(ctx)
	}

	program := tea.NewProgram(tui.New(cmd.app, watcher), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	return err
}
