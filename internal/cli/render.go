package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/config"
	"github.com/matzehuels/kintree/pkg/pipeline"
)

// renderCommand creates the render command: load → layout → render in one step.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		tgt        target
		flags      renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [snapshot.json]",
		Short: "Render a family tree to PNG, SVG, DOT or scene JSON",
		Long: `Render a family tree to PNG, SVG, DOT or scene JSON.

The tree is read from a snapshot file or, with --tree, from the configured
source. PNG output draws the laid-out tree with the raster renderer; SVG and
DOT output are graphviz node-link diagrams of the same family.

Rendered artifacts are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.renderDefaults()
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if err := tgt.resolve(args, &opts); err != nil {
				return err
			}
			flags.apply(&opts)
			return c.runRender(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple); - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): png (default), svg, dot, json (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	tgt.bind(cmd)
	flags.bind(cmd)

	return cmd
}

// layoutCommand exports the laid-out scene as JSON.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		tgt     target
		theme   string
	)

	cmd := &cobra.Command{
		Use:   "layout [snapshot.json]",
		Short: "Export the laid-out scene as JSON",
		Long: `Export the laid-out scene as JSON.

The scene lists every node and relationship in paint order with its model
coordinates, label and kinship, for consumers that draw the tree themselves.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.renderDefaults()
			opts.Formats = []string{pipeline.FormatJSON}
			if theme != "" {
				opts.Theme = theme
			}
			if err := tgt.resolve(args, &opts); err != nil {
				return err
			}
			if output == "" {
				output = defaultOutput(opts, "scene.json")
			}
			return c.runRender(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.scene.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&theme, "theme", "", "color theme recorded in the scene")
	tgt.bind(cmd)

	return cmd
}

// dotCommand renders the graphviz node-link diagram.
func (c *CLI) dotCommand() *cobra.Command {
	var (
		output   string
		noCache  bool
		raw      bool
		detailed bool
		tgt      target
	)

	cmd := &cobra.Command{
		Use:   "dot [snapshot.json]",
		Short: "Render a graphviz node-link diagram",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.renderDefaults()
			opts.Detailed = detailed
			opts.Formats = []string{pipeline.FormatSVG}
			if raw {
				opts.Formats = []string{pipeline.FormatDOT}
			}
			if err := tgt.resolve(args, &opts); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.svg)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&raw, "raw", false, "write the DOT source instead of SVG")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show kinship and years in labels")
	tgt.bind(cmd)

	return cmd
}

// runRender executes the pipeline and writes its artifacts.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, &opts, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close(context.WithoutCancel(ctx))

	opts.Logger = c.Logger
	prog := newProgress(c.Logger)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done("rendered", "tree", opts.TreeID, "focal", result.Snapshot.Focal.ID)

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     defaultOutput(opts, ""),
		output:    output,
		people:    result.Stats.People,
		drawables: result.Stats.Drawables,
		cacheHit:  result.CacheInfo.LoadHit && result.CacheInfo.RenderHit,
	})
}

// artifactWriteParams holds what writeArtifacts needs.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string // base for derived paths
	output    string
	people    int
	drawables int
	cacheHit  bool
}

// writeArtifacts writes each artifact to its file (or stdout for "-") and
// prints a summary.
func writeArtifacts(p artifactWriteParams) error {
	if p.output == "-" {
		if len(p.formats) != 1 {
			return fmt.Errorf("stdout output needs exactly one format")
		}
		_, err := os.Stdout.Write(p.artifacts[p.formats[0]])
		return err
	}

	paths := make([]string, 0, len(p.formats))
	for _, format := range p.formats {
		path := outputPath(p.output, p.input, format, len(p.formats) > 1)
		if err := writeFile(path, p.artifacts[format]); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	printSuccess("Render complete")
	for _, path := range paths {
		printFile(path)
	}
	printStats(p.people, p.drawables, p.cacheHit)
	return nil
}

// outputPath derives an artifact's path. A single format writes to output
// as given; multiple formats treat output as a base path.
func outputPath(output, input, format string, multiple bool) string {
	if output != "" && !multiple {
		return output
	}
	base := basePath(output, input)
	if format == pipeline.FormatJSON {
		return base + ".scene.json"
	}
	return base + "." + format
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.png, .svg, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// defaultOutput names output after the snapshot file, or the tree and focal
// person for source lookups. A non-empty suffix is appended with a dot.
func defaultOutput(opts pipeline.Options, suffix string) string {
	base := opts.TreeID
	if opts.Source != config.SourceFile {
		base = sanitize(opts.TreeID)
		if opts.FocalID != "" {
			base += "_" + sanitize(opts.FocalID)
		}
		base += ".json"
	}
	if suffix == "" {
		return base
	}
	return basePath("", base) + "." + suffix
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' {
			return '_'
		}
		return r
	}, s)
}

func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput opens path for writing; an empty path is stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
