package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/quillmd/quill/internal/commands"
	"github.com/quillmd/quill/internal/core/config"
	"github.com/quillmd/quill/internal/quill"
	"github.com/quillmd/quill/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var (
		logCloser func()
		quillApp  = &quill.App{}
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "quill",
		Usage:     "Browse and toggle todos embedded in your markdown notes",
		UsageText: "quill [global options] command [command options]",
		Description: `Quill scans a directory of markdown documents for checkbox task
markers, extracts their metadata (priority, tags, due dates, heading
context), and lets you toggle completion with the change written back
into the source document in place.

Run 'quill' with no arguments to open the interactive browser.
Run 'quill list' for scriptable output, or 'quill serve' for the
dashboard HTTP API.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("QUILL_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (default: stderr)",
				Sources:     cli.EnvVars("QUILL_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("QUILL_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "dir",
				Aliases:     []string{"d"},
				Usage:       "corpus root directory",
				Sources:     cli.EnvVars("QUILL_DIR"),
				Value:       commands.DefaultDir(),
				Destination: &flags.Dir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.Dir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			// Populate the pre-allocated App struct (commands already
			// hold a pointer to it)
			*quillApp = *quill.NewApp(cfg, log.Logger)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, quillApp)

	app = commands.NewListCmd(flags, quillApp).Register(app)
	app = commands.NewToggleCmd(flags, quillApp).Register(app)
	app = commands.NewStatsCmd(flags, quillApp).Register(app)
	app = commands.NewTagsCmd(flags, quillApp).Register(app)
	app = commands.NewScanCmd(flags, quillApp).Register(app)
	app = commands.NewOutlineCmd(flags, quillApp).Register(app)
	app = commands.NewServeCmd(flags, quillApp).Register(app)

	// Open the TUI when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'quill --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		fmt.Println(err.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
