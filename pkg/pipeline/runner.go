package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/geom"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/scene"
	"github.com/matzehuels/kintree/pkg/snapshot"
	"github.com/matzehuels/kintree/pkg/source"
	"github.com/matzehuels/kintree/pkg/tree"
	"github.com/matzehuels/kintree/pkg/view"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for its source, cache and logger. It doesn't
// store pipeline results, so multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Source source.Source
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Images loads portraits for PNG output. Nil renders placeholders.
	Images view.ImageLoader
}

// NewRunner creates a runner reading from src.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(src source.Source, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source: src,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	snap, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Snapshot = snap
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.People = len(snap.People())
	result.CacheInfo.LoadHit = loadHit
	result.SnapshotHash = snapshotHash(snap)

	r.Logger.Info("loaded snapshot",
		"tree", opts.TreeID,
		"focal", snap.Focal.ID,
		"people", result.Stats.People,
		"cached", loadHit,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	sc, err := r.Layout(ctx, snap, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Scene = sc
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Drawables = sc.Len()

	r.Logger.Info("computed layout",
		"drawables", sc.Len(),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, snap, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo fetches the snapshot with caching and returns cache hit info.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (snap *snapshot.Snapshot, hit bool, err error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}
	if r.Source == nil {
		return nil, false, fmt.Errorf("runner has no source")
	}

	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, opts.Source, opts.TreeID)
	defer func() {
		people := 0
		if snap != nil {
			people = len(snap.People())
		}
		observability.Pipeline().OnLoadComplete(ctx, opts.Source, opts.TreeID, people, time.Since(start), err)
	}()

	cacheKey := r.Keyer.SnapshotKey(opts.Source, opts.TreeID, opts.FocalID)

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, ok, err := r.Cache.Get(ctx, cacheKey); err == nil && ok {
			if cached, err := snapshot.ReadJSON(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "snapshot")
				return cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "snapshot")
	}

	snap, err = r.Source.Snapshot(ctx, opts.TreeID, opts.FocalID)
	if err != nil {
		return nil, false, err
	}
	if err := snap.Validate(); err != nil {
		return nil, false, err
	}

	if data, err := snapshot.Marshal(snap); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLSnapshot); err == nil {
			observability.Cache().OnCacheSet(ctx, "snapshot", len(data))
		}
	}

	return snap, false, nil
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*snapshot.Snapshot, error) {
	snap, _, err := r.LoadWithCacheInfo(ctx, opts)
	return snap, err
}

// Layout builds the layout model of snap and its scene in model coordinates.
func (r *Runner) Layout(ctx context.Context, snap *snapshot.Snapshot, opts Options) (sc *scene.Scene, err error) {
	focal := ""
	if snap != nil && snap.Focal != nil {
		focal = snap.Focal.ID
	}

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, focal)
	defer func() {
		n := 0
		if sc != nil {
			n = sc.Len()
		}
		observability.Pipeline().OnLayoutComplete(ctx, focal, n, time.Since(start), err)
	}()

	root, err := tree.FromSnapshot(snap)
	if err != nil {
		return nil, err
	}
	return scene.Build(root, geom.Point{}, scene.WithStyle(opts.Style())), nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, snap *snapshot.Snapshot, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	defer func() {
		observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	hash := snapshotHash(snap)
	if hash == "" {
		return nil, false, fmt.Errorf("serialize snapshot for cache key")
	}

	// Try to get all formats from cache
	artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, ok, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format)))
		if err != nil || !ok {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			break
		}
		observability.Cache().OnCacheHit(ctx, "artifact")
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := Render(ctx, snap, opts, r.Images)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil
}

// Close releases resources held by the runner: the cache and, when it holds
// a connection, the source.
func (r *Runner) Close(ctx context.Context) error {
	var err error
	if r.Source != nil {
		err = source.Close(ctx, r.Source)
	}
	if r.Cache != nil {
		if cerr := r.Cache.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func snapshotHash(s *snapshot.Snapshot) string {
	data, err := snapshot.Marshal(s)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}
