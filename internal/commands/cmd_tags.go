package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/quillmd/quill/internal/quill"
	"github.com/quillmd/quill/pkg/iojson"
)

// TagsCmd implements the quill tags and quill files commands.
type TagsCmd struct {
	flags *Flags
	app   *quill.App

	jsonOutput bool
}

// NewTagsCmd creates a new tags command.
func NewTagsCmd(flags *Flags, app *quill.App) *TagsCmd {
	return &TagsCmd{flags: flags, app: app}
}

// Register adds the tags and files commands to the application.
func (cmd *TagsCmd) Register(app *cli.Command) *cli.Command {
	jsonFlag := &cli.BoolFlag{
		Name:        "json",
		Usage:       "output as JSON lines",
		Destination: &cmd.jsonOutput,
	}

	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "tags",
			Usage:     "List tags with usage counts",
			UsageText: "quill tags [--json]",
			Flags:     []cli.Flag{jsonFlag},
			Action:    cmd.runTags,
		},
		&cli.Command{
			Name:      "files",
			Usage:     "List corpus files that contain todos",
			UsageText: "quill files",
			Action:    cmd.runFiles,
		},
	)

	return app
}

func (cmd *TagsCmd) runTags(ctx context.Context, c *cli.Command) error {
	if _, err := cmd.app.Todos.Rescan(ctx); err != nil {
		return err
	}

	for _, tag := range cmd.app.Todos.Tags(ctx) {
		if cmd.jsonOutput {
			if err := iojson.WriteLine(c.Root().Writer, tag); err != nil {
				return err
			}
			continue
		}
		_, _ = fmt.Fprintf(c.Root().Writer, "%s\t%d\n", tag.Name, tag.Count)
	}

	return nil
}

func (cmd *TagsCmd) runFiles(ctx context.Context, c *cli.Command) error {
	if _, err := cmd.app.Todos.Rescan(ctx); err != nil {
		return err
	}

	for _, file := range cmd.app.Todos.Files(ctx) {
		_, _ = fmt.Fprintln(c.Root().Writer, file)
	}

	return nil
}
