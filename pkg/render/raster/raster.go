// Package raster paints family trees to bitmaps with gg.
//
// [RenderPNG] is the one-shot path used by the CLI and the HTTP service: it
// builds an interaction controller for the snapshot, waits for portraits,
// sizes the viewport and encodes the frame. [Frame] paints whatever view a
// live controller currently shows, which is what the terminal viewer uses.
package raster

import (
	"bytes"
	"context"
	"image"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/fogleman/gg"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/fonts"
	"github.com/matzehuels/kintree/pkg/geom"
	"github.com/matzehuels/kintree/pkg/scene"
	"github.com/matzehuels/kintree/pkg/snapshot"
	"github.com/matzehuels/kintree/pkg/view"
)

const (
	// DefaultMargin is the padding around a fitted scene, in screen units.
	DefaultMargin = 24.0

	// MaxSide bounds each side of the backing surface, in device pixels.
	MaxSide = 8192.0

	// MaxDPR bounds the device pixel ratio.
	MaxDPR = 8.0
)

// Option configures a render.
type Option func(*renderer)

type renderer struct {
	width, height float64
	dpr           float64
	margin        float64
	style         *scene.Style
	loader        view.ImageLoader
	logger        *log.Logger
}

// WithSize sets the viewport in screen units. A zero size fits the whole
// scene instead of centering on the focal person.
func WithSize(width, height float64) Option {
	return func(r *renderer) { r.width, r.height = width, height }
}

// WithDPR sets the device pixel ratio (default 1).
func WithDPR(dpr float64) Option { return func(r *renderer) { r.dpr = dpr } }

// WithMargin sets the padding around a fitted scene.
func WithMargin(m float64) Option { return func(r *renderer) { r.margin = m } }

// WithStyle sets the colors. Faces left nil are filled with the Go fonts.
func WithStyle(st scene.Style) Option { return func(r *renderer) { r.style = &st } }

// WithImageLoader enables portraits.
func WithImageLoader(l view.ImageLoader) Option { return func(r *renderer) { r.loader = l } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(r *renderer) { r.logger = l } }

// Style returns st with any missing faces set to the Go fonts.
func Style(st scene.Style) (scene.Style, error) {
	if st.Face != nil && st.SmallFace != nil {
		return st, nil
	}
	label, detail, err := fonts.Faces()
	if err != nil {
		return st, err
	}
	if st.Face == nil {
		st.Face = label
	}
	if st.SmallFace == nil {
		st.SmallFace = detail
	}
	return st, nil
}

// Controller returns a controller showing s, ready to paint: faces loaded,
// portraits attached and the viewport set.
func Controller(ctx context.Context, s *snapshot.Snapshot, opts ...Option) (*view.Controller, error) {
	r := renderer{dpr: 1, margin: DefaultMargin, logger: log.NewWithOptions(io.Discard, log.Options{})}
	for _, opt := range opts {
		opt(&r)
	}
	base := scene.DefaultStyle()
	if r.style != nil {
		base = *r.style
	}
	st, err := Style(base)
	if err != nil {
		return nil, err
	}

	vopts := []view.Option{view.WithStyle(st), view.WithLogger(r.logger), view.WithContext(ctx)}
	if r.loader != nil {
		vopts = append(vopts, view.WithImageLoader(r.loader))
	}
	c := view.New(vopts...)
	if r.width > 0 && r.height > 0 {
		c.SetViewport(r.width, r.height, r.dpr)
	}
	if err := c.Load(s); err != nil {
		return nil, err
	}
	c.AwaitImages(ctx)

	if r.width <= 0 || r.height <= 0 {
		err = Fit(c, r.margin, r.dpr)
	} else {
		err = checkSize(c)
	}
	if err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Fit sizes the viewport to the scene plus margin on every side and pans so
// the whole scene is visible at scale 1. It fails when the fitted surface
// would exceed [MaxSide] pixels per side.
func Fit(c *view.Controller, margin, dpr float64) error {
	b := c.Scene().Bounds()
	c.SetViewport(math.Ceil(b.W+2*margin), math.Ceil(b.H+2*margin), dpr)
	c.SetCamera(view.Camera{
		Offset: geom.Point{X: margin - b.X, Y: margin - b.Y},
		Scale:  1,
	})
	return checkSize(c)
}

func checkSize(c *view.Controller) error {
	_, _, dpr := c.Viewport()
	if dpr > MaxDPR || math.IsNaN(dpr) {
		return errors.New(errors.ErrCodeInvalidInput, "dpr %v exceeds %v", dpr, MaxDPR)
	}
	w, h := c.PixelSize()
	if float64(w) > MaxSide || float64(h) > MaxSide {
		return errors.New(errors.ErrCodeInvalidInput, "surface %dx%d exceeds %v pixels per side", w, h, MaxSide)
	}
	return nil
}

// Frame paints the controller's current view into a new image of
// [view.Controller.PixelSize] pixels.
func Frame(c *view.Controller) image.Image { return paint(c).Image() }

// Encode writes the controller's current view as PNG.
func Encode(c *view.Controller, w io.Writer) error { return paint(c).EncodePNG(w) }

func paint(c *view.Controller) *gg.Context {
	w, h := c.PixelSize()
	dc := gg.NewContext(max(w, 1), max(h, 1))
	c.Render(dc)
	return dc
}

// RenderPNG renders s as PNG bytes.
func RenderPNG(ctx context.Context, s *snapshot.Snapshot, opts ...Option) ([]byte, error) {
	c, err := Controller(ctx, s, opts...)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	var buf bytes.Buffer
	if err := Encode(c, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
