package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/kintree/pkg/geom"
	"github.com/matzehuels/kintree/pkg/render/nodelink"
	"github.com/matzehuels/kintree/pkg/render/raster"
	"github.com/matzehuels/kintree/pkg/scene"
	"github.com/matzehuels/kintree/pkg/snapshot"
	"github.com/matzehuels/kintree/pkg/tree"
	"github.com/matzehuels/kintree/pkg/view"
)

// Render generates output artifacts in the requested formats. Portraits are
// drawn into PNG output only when opts.Portraits is set and loader is not nil.
func Render(ctx context.Context, s *snapshot.Snapshot, opts Options, loader view.ImageLoader) (map[string][]byte, error) {
	root, err := tree.FromSnapshot(s)
	if err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string

	for _, format := range opts.Formats {
		var data []byte

		switch format {
		case FormatPNG:
			data, err = renderPNG(ctx, s, opts, loader)
		case FormatSVG:
			if dot == "" {
				dot = nodelink.ToDOT(root, nodelink.Options{Detailed: opts.Detailed})
			}
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatDOT:
			if dot == "" {
				dot = nodelink.ToDOT(root, nodelink.Options{Detailed: opts.Detailed})
			}
			data = []byte(dot)
		case FormatJSON:
			var buf bytes.Buffer
			err = scene.Build(root, geom.Point{}, scene.WithStyle(opts.Style())).WriteJSON(&buf)
			data = buf.Bytes()
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func renderPNG(ctx context.Context, s *snapshot.Snapshot, opts Options, loader view.ImageLoader) ([]byte, error) {
	ropts := []raster.Option{
		raster.WithSize(opts.Width, opts.Height),
		raster.WithDPR(opts.DPR),
		raster.WithStyle(opts.Style()),
	}
	if opts.Logger != nil {
		ropts = append(ropts, raster.WithLogger(opts.Logger))
	}
	if opts.Portraits && loader != nil {
		ropts = append(ropts, raster.WithImageLoader(loader))
	}
	return raster.RenderPNG(ctx, s, ropts...)
}
