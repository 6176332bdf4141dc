package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/kintree/pkg/tree"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the kinship and lifespan lines to person labels.
	// When false, only the display name is shown.
	Detailed bool
}

// ToDOT converts a family layout model to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
func ToDOT(root *tree.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Go\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=none, color=\"#6b7280\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	var couples, links []string
	tree.Walk(root, func(n *tree.Node) {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
		for _, r := range n.Children {
			links = append(links, fmt.Sprintf("  %q -> %q [tooltip=%q];", n.ID, r.To.ID, r.Label))
		}
		if n.Partner == nil || n.IsPartner {
			return
		}
		p := n.Partner
		style := ""
		if p.Ex {
			style = ", style=dashed"
		}
		couples = append(couples,
			fmt.Sprintf("  %q [shape=point, width=0.06, label=\"\"];", p.ID),
			fmt.Sprintf("  { rank=same; %q; %q; %q; }", p.From.ID, p.ID, p.To.ID),
			fmt.Sprintf("  %q -> %q [tooltip=%q%s];", p.From.ID, p.ID, p.Label, style),
			fmt.Sprintf("  %q -> %q [tooltip=%q%s];", p.ID, p.To.ID, p.Label, style))
		for _, c := range p.Children {
			links = append(links, fmt.Sprintf("  %q -> %q [tooltip=%q];", p.ID, c.To.ID, c.Label))
		}
	})

	if len(couples) > 0 {
		buf.WriteString("\n")
		buf.WriteString(strings.Join(couples, "\n"))
		buf.WriteString("\n")
	}
	if len(links) > 0 {
		buf.WriteString("\n")
		buf.WriteString(strings.Join(links, "\n"))
		buf.WriteString("\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *tree.Node, detailed bool) string {
	if !detailed {
		return n.Label
	}
	parts := []string{n.Label}
	kin := n.Kinship
	if n.InLaw != "" {
		kin = strings.TrimPrefix(kin+" / "+n.InLaw, " / ")
	}
	for _, s := range []string{kin, n.Subtitle} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *tree.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed))}
	if n.IsFocal {
		attrs = append(attrs, "fillcolor=\"#fbe3c8\"", "color=\"#d9822b\"", "penwidth=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
