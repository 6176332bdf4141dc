// Package pkg provides the core libraries of kintree, a layout, render and
// interaction engine for family trees.
//
// # Overview
//
// Kintree takes a snapshot of a family around one focal person (parents,
// partner, siblings, half siblings and children) and places it as a
// non-overlapping node-link diagram. The same scene is painted to PNG,
// exported as JSON, or explored in the terminal viewer.
//
// # Architecture
//
// The typical data flow:
//
//	Snapshot source (file, HTTP, Neo4j, MongoDB)
//	         ↓
//	    [snapshot] (flat records, validation)
//	         ↓
//	    [tree] (recursive family model)
//	         ↓
//	    [scene] (placed drawables, hit testing, selection)
//	         ↓
//	    [view] (camera, tools, jump-to, portraits)
//	         ↓
//	    PNG / SVG / DOT / JSON
//
// # Quick Start
//
//	snap, _ := snapshot.ImportJSON("family.json")
//	root, _ := tree.FromSnapshot(snap)
//	sc := scene.Build(root, geom.Point{})
//	png, _ := raster.RenderPNG(ctx, snap, raster.WithDPR(2))
//
// Or let the [pipeline] run load, layout and render with caching:
//
//	runner := pipeline.NewRunner(source.NewFile(""), cache.NewNullCache(), nil, logger)
//	result, _ := runner.Execute(ctx, pipeline.Options{TreeID: "family.json"})
//
// # Main Packages
//
// [geom] holds points, rectangles and the drawing surface abstraction.
// [snapshot], [tree] and [scene] are the domain model, from flat records to
// placed drawables. [view] drives interaction and [render] holds the output
// sinks.
//
// [source] loads snapshots, [cache] stores them and the rendered artifacts,
// [imagery] fetches portraits. [pipeline] orchestrates, [server] serves it
// over HTTP and [config] reads the TOML configuration.
//
// [errors], [httputil], [observability], [fonts] and [buildinfo] are
// supporting packages.
//
// [geom]: github.com/matzehuels/kintree/pkg/geom
// [snapshot]: github.com/matzehuels/kintree/pkg/snapshot
// [tree]: github.com/matzehuels/kintree/pkg/tree
// [scene]: github.com/matzehuels/kintree/pkg/scene
// [view]: github.com/matzehuels/kintree/pkg/view
// [render]: github.com/matzehuels/kintree/pkg/render
// [source]: github.com/matzehuels/kintree/pkg/source
// [cache]: github.com/matzehuels/kintree/pkg/cache
// [imagery]: github.com/matzehuels/kintree/pkg/imagery
// [pipeline]: github.com/matzehuels/kintree/pkg/pipeline
// [server]: github.com/matzehuels/kintree/pkg/server
// [config]: github.com/matzehuels/kintree/pkg/config
// [errors]: github.com/matzehuels/kintree/pkg/errors
// [httputil]: github.com/matzehuels/kintree/pkg/httputil
// [observability]: github.com/matzehuels/kintree/pkg/observability
// [fonts]: github.com/matzehuels/kintree/pkg/fonts
// [buildinfo]: github.com/matzehuels/kintree/pkg/buildinfo
package pkg
