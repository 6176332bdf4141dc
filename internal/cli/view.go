package cli

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/render/raster"
	"github.com/matzehuels/kintree/pkg/snapshot"
	"github.com/matzehuels/kintree/pkg/view"
)

// viewCommand opens the interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		noCache   bool
		portraits bool
		theme     string
		tgt       target
	)

	cmd := &cobra.Command{
		Use:   "view [snapshot.json]",
		Short: "Explore a family tree interactively in the terminal",
		Long: `Explore a family tree interactively in the terminal.

The tree is drawn with half-block characters; use a terminal with true color
and mouse support. Pan by dragging or with the arrow keys, zoom with the wheel
or +/-, select and drag people with the select tool, and jump to a person by
name with /. Double-clicking a person (or choosing them in jump mode)
re-centers the tree on them when the source has their snapshot.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.renderDefaults()
			if theme != "" {
				opts.Theme = theme
			}
			if err := pipeline.ValidateTheme(opts.Theme); err != nil {
				return err
			}
			if err := tgt.resolve(args, &opts); err != nil {
				return err
			}
			opts.Portraits = portraits
			return c.runView(cmd.Context(), opts, noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&portraits, "portraits", false, "download and draw portraits")
	cmd.Flags().StringVar(&theme, "theme", "", "color theme: light (default), dark")
	tgt.bind(cmd)

	return cmd
}

func (c *CLI) runView(ctx context.Context, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, &opts, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close(context.WithoutCancel(ctx))

	opts.Logger = c.Logger
	snap, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}

	base := c.Config.Render.Style()
	if opts.Theme != c.Config.Render.Theme {
		base = opts.Style()
	}
	style, err := raster.Style(base)
	if err != nil {
		return fmt.Errorf("load fonts: %w", err)
	}

	// Log lines would tear the alternate screen.
	quiet := log.NewWithOptions(io.Discard, log.Options{})
	runner.Logger = quiet

	load := func(ctx context.Context, focalID string) (*snapshot.Snapshot, error) {
		o := opts
		o.FocalID = focalID
		o.Logger = quiet
		return runner.Load(ctx, o)
	}

	vopts := []view.Option{view.WithStyle(style), view.WithLogger(quiet)}
	if opts.Portraits && runner.Images != nil {
		vopts = append(vopts, view.WithImageLoader(runner.Images))
	}
	v := newViewer(ctx, snap, load, vopts...)
	defer v.ctrl.Close()

	p := tea.NewProgram(v, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	v.send = p.Send
	_, err = p.Run()
	return err
}
