// Package pipeline provides the load → layout → render pipeline of kintree.
//
// The CLI and the HTTP service both run snapshots through a [Runner], so
// caching, defaults and validation behave the same everywhere.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: fetch the snapshot around a person from a [source.Source]
//  2. Layout: build the layout model and the scene
//  3. Render: produce artifacts (PNG, SVG, DOT, scene JSON)
//
// Loaded snapshots and rendered artifacts are cached; layout is cheap and
// always recomputed.
//
// # Usage
//
//	runner := pipeline.NewRunner(src, cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    TreeID:  "smith",
//	    FocalID: "p42",
//	    Formats: []string{"png", "json"},
//	})
//	png := result.Artifacts["png"]
//
// [source.Source]: github.com/matzehuels/kintree/pkg/source.Source
package pipeline

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/render/raster"
	"github.com/matzehuels/kintree/pkg/scene"
	"github.com/matzehuels/kintree/pkg/snapshot"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultDPR is the default device pixel ratio of raster output.
	DefaultDPR = 1.0

	// DefaultTheme is the default color theme.
	DefaultTheme = "light"

	// MaxSide bounds each side of a raster surface in device pixels.
	MaxSide = raster.MaxSide

	// MaxDPR bounds the device pixel ratio.
	MaxDPR = raster.MaxDPR
)

// Format constants for output formats.
const (
	FormatPNG  = "png"
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatSVG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// ContentTypes maps output formats to MIME types.
var ContentTypes = map[string]string{
	FormatPNG:  "image/png",
	FormatSVG:  "image/svg+xml",
	FormatDOT:  "text/vnd.graphviz",
	FormatJSON: "application/json",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Source  string `json:"source,omitempty"` // Source name, part of snapshot cache keys
	TreeID  string `json:"tree_id"`
	FocalID string `json:"focal_id,omitempty"`
	Refresh bool   `json:"refresh,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Width     float64  `json:"width,omitempty"`  // Viewport width; 0 fits the scene
	Height    float64  `json:"height,omitempty"` // Viewport height; 0 fits the scene
	DPR       float64  `json:"dpr,omitempty"`
	Theme     string   `json:"theme,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"` // Kinship and years in node-link labels
	Portraits bool     `json:"portraits,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Snapshot is the loaded snapshot.
	Snapshot *snapshot.Snapshot

	// SnapshotHash is the content hash of the snapshot.
	SnapshotHash string

	// Scene is the laid-out scene.
	Scene *scene.Scene

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	People     int
	Drawables  int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // Whether the snapshot came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: png, svg, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTheme checks that a theme is valid.
func ValidateTheme(theme string) error {
	if _, ok := scene.Themes[theme]; !ok {
		return errors.New(errors.ErrCodeInvalidInput, "invalid theme: %q (must be one of: light, dark)", theme)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading.
func (o *Options) ValidateForLoad() error {
	if o.TreeID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "tree_id is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if o.DPR == 0 {
		o.DPR = DefaultDPR
	}
	if o.Theme == "" {
		o.Theme = DefaultTheme
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateTheme(o.Theme); err != nil {
		return err
	}
	switch {
	case !finite(o.Width) || !finite(o.Height) || !finite(o.DPR):
		return errors.New(errors.ErrCodeInvalidInput, "width, height and dpr must be finite numbers")
	case o.Width < 0 || o.Height < 0 || o.DPR < 0:
		return errors.New(errors.ErrCodeInvalidInput, "width, height and dpr must not be negative")
	case (o.Width == 0) != (o.Height == 0):
		return errors.New(errors.ErrCodeInvalidInput, "width and height must be set together")
	case o.DPR > MaxDPR:
		return errors.New(errors.ErrCodeInvalidInput, "dpr must not exceed %v", MaxDPR)
	case o.Width*o.DPR > MaxSide || o.Height*o.DPR > MaxSide:
		return errors.New(errors.ErrCodeInvalidInput, "viewport exceeds %v pixels per side", MaxSide)
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Style returns the scene style of the configured theme.
func (o *Options) Style() scene.Style {
	st, _ := scene.ThemeStyle(o.Theme)
	return st
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Width:  int(o.Width),
		Height: int(o.Height),
		DPR:    o.DPR,
		Theme:  fmt.Sprintf("%s/detailed=%t/portraits=%t", o.Theme, o.Detailed, o.Portraits),
	}
}
