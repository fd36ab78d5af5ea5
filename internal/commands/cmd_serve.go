package commands

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/quillmd/quill/internal/quill"
	"github.com/quillmd/quill/internal/server"
)

// ServeCmd implements the quill serve command.
type ServeCmd struct {
	flags *Flags
	app   *quill.App

	addr string
}

// NewServeCmd creates a new serve command.
func NewServeCmd(flags *Flags, app *quill.App) *ServeCmd {
	return &ServeCmd{flags: flags, app: app}
}

// Register adds the serve command to the application.
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Serve the todo index over a JSON HTTP API",
		UsageText: "quill serve [--addr <host:port>]",
		Description: `Scans the corpus, starts the HTTP API, and watches the corpus for
changes, rescanning automatically when documents are edited.

Endpoints: /todos /stats /tags /files /kanban /calendar /outline
/toggle /refresh`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (overrides config)",
				Destination: &cmd.addr,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	if _, err := cmd.app.Todos.Rescan(ctx); err != nil {
		return err
	}

	addr := cmd.addr
	if addr == "" {
		addr = cmd.app.Config.Server.Addr
	}

	srv := server.New(addr, cmd.app.Todos, log.Logger)
	if err := srv.Start(ctx); err != nil {
		return err
	}

	watcher, err := quill.NewWatcher(cmd.app.Config, log.Logger)
	if err != nil {
		log.Warn().Err(err).Msg("file watching disabled")
	} else {
		defer func() { _ = watcher.Close() }()
		go watcher.Run(ctx)
		go func() {
			for range watcher.Rescans() {
				if _, err := cmd.app.Todos.Rescan(ctx); err != nil {
					log.Error().Err(err).Msg("watch-triggered rescan failed")
				}
			}
		}()
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
