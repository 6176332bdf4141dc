package view

import (
	"context"
	"image"
	"io"
	"math"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/geom"
	"github.com/matzehuels/kintree/pkg/imagery"
	"github.com/matzehuels/kintree/pkg/scene"
	"github.com/matzehuels/kintree/pkg/snapshot"
	"github.com/matzehuels/kintree/pkg/tree"
)

// Selection identifies the selected drawable. The zero value is no selection.
type Selection struct {
	ID   string
	Kind scene.Kind
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool { return s.ID == "" }

// ContextMenuRequest asks the host to show a context menu. Kind is "node",
// "relationship" or "canvas"; ID is empty for the canvas.
type ContextMenuRequest struct {
	Point geom.Point
	Model geom.Point
	Kind  string
	ID    string
}

// Hooks are the controller's outbound events. Nil hooks are skipped.
type Hooks struct {
	OnSelect      func(Selection)
	OnRecenter    func(personID string)
	OnContextMenu func(ContextMenuRequest)
	// OnChange asks the host to repaint.
	OnChange func()
}

// ImageLoader loads a portrait. *imagery.Loader satisfies it.
type ImageLoader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

var _ ImageLoader = (*imagery.Loader)(nil)

// Option configures a [Controller].
type Option func(*Controller)

// WithHooks sets the callbacks fired on selection and focal changes.
func WithHooks(h Hooks) Option { return func(c *Controller) { c.hooks = h } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(c *Controller) { c.logger = l } }

// WithStyle sets the colors and faces used to paint the scene.
func WithStyle(st scene.Style) Option { return func(c *Controller) { c.style = st } }

// WithImageLoader enables portraits.
func WithImageLoader(l ImageLoader) Option { return func(c *Controller) { c.loader = l } }

// WithPlaceholder sets the image shown while a portrait loads or after it
// fails.
func WithPlaceholder(img image.Image) Option { return func(c *Controller) { c.placeholder = img } }

// WithPost enables background portrait loading. post must run its argument
// on the controller's event loop.
func WithPost(post func(func())) Option { return func(c *Controller) { c.post = post } }

// WithImageConcurrency bounds concurrent portrait loads.
func WithImageConcurrency(n int) Option {
	return func(c *Controller) { c.imageLimit = max(1, n) }
}

// WithContext sets the parent context of background portrait loads.
func WithContext(ctx context.Context) Option { return func(c *Controller) { c.ctx = ctx } }

// Controller drives one family tree view.
type Controller struct {
	hooks  Hooks
	logger *log.Logger
	style  scene.Style

	snap  *snapshot.Snapshot
	scene *scene.Scene
	tool  Tool
	cam   Camera

	width, height, dpr float64

	pointer pointerState
	jump    jumpState

	ctx         context.Context
	loadCtx     context.Context
	loader      ImageLoader
	post        func(func())
	placeholder image.Image
	imageLimit  int
	gen         uint64
	cancel      context.CancelFunc
	inflight    sync.WaitGroup
}

// New returns a controller with an empty scene.
func New(opts ...Option) *Controller {
	c := &Controller{
		logger:     log.NewWithOptions(io.Discard, log.Options{}),
		style:      scene.DefaultStyle(),
		tool:       ToolPan,
		cam:        NewCamera(),
		width:      800,
		height:     600,
		dpr:        1,
		ctx:        context.Background(),
		imageLimit: 4,
		jump:       jumpState{cursor: -1},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.placeholder == nil {
		c.placeholder = imagery.Placeholder(int(scene.PortraitSize))
	}
	c.scene = scene.Build(nil, geom.Point{})
	return c
}

// Load replaces the scene with a fresh layout of s and centers the focal
// person. An invalid snapshot leaves an empty scene and returns the error.
func (c *Controller) Load(s *snapshot.Snapshot) error {
	c.snap = s
	return c.rebuild()
}

func (c *Controller) rebuild() error {
	c.cancelImages()
	c.pointer = pointerState{}
	c.jump = jumpState{cursor: -1}

	root, err := tree.FromSnapshot(c.snap)
	c.scene = scene.Build(root, geom.Point{},
		scene.WithOnChange(func(scene.Drawable) { c.changed() }),
		scene.WithStyle(c.style))
	if err != nil {
		c.logger.Warn("nothing to display", "error", err)
		c.changed()
		return err
	}
	c.logger.Debug("built scene", "drawables", c.scene.Len())

	c.Center()
	c.startImages()
	c.changed()
	return nil
}

// Close stops background work for the current scene.
func (c *Controller) Close() { c.cancelImages() }

// Scene returns the current scene.
func (c *Controller) Scene() *scene.Scene { return c.scene }

// Snapshot returns the snapshot the scene was built from.
func (c *Controller) Snapshot() *snapshot.Snapshot { return c.snap }

// Camera returns the camera.
func (c *Controller) Camera() Camera { return c.cam }

// SetCamera replaces the camera.
func (c *Controller) SetCamera(cam Camera) {
	c.cam = cam
	c.changed()
}

// Center pans so the focal person (or the scene's middle) sits at the
// viewport center.
func (c *Controller) Center() {
	target := c.scene.Bounds().Center()
	if f := c.scene.Focal(); f != nil {
		target = f.Bounds().Center()
	}
	c.cam.CenterOn(target, geom.Point{X: c.width / 2, Y: c.height / 2})
	c.changed()
}

// SetViewport records the viewport size in screen units and its device pixel
// ratio. The scene is repainted, never laid out again.
func (c *Controller) SetViewport(width, height, dpr float64) {
	if dpr <= 0 {
		dpr = 1
	}
	c.width, c.height, c.dpr = width, height, dpr
	c.changed()
}

// Viewport returns the viewport size and device pixel ratio.
func (c *Controller) Viewport() (width, height, dpr float64) {
	return c.width, c.height, c.dpr
}

// PixelSize returns the backing surface size in device pixels.
func (c *Controller) PixelSize() (int, int) {
	return int(math.Round(c.width * c.dpr)), int(math.Round(c.height * c.dpr))
}

// Render paints the scene through the camera onto s, which must be
// [Controller.PixelSize] large.
func (c *Controller) Render(s geom.Surface) {
	s.Push()
	defer s.Pop()
	s.SetColor(c.style.Background)
	s.Clear()
	s.Scale(c.dpr, c.dpr)
	s.Translate(c.cam.Offset.X, c.cam.Offset.Y)
	s.Scale(c.cam.Scale, c.cam.Scale)
	c.scene.Paint(s)
}

// Tool returns the active tool.
func (c *Controller) Tool() Tool { return c.tool }

// SetTool switches tools. Entering select clears the selection, leaving
// jump-to cancels the search and home rebuilds and re-centers the scene.
func (c *Controller) SetTool(t Tool) {
	if c.tool == ToolJumpTo && t != ToolJumpTo {
		c.clearJump()
	}
	c.tool = t
	c.pointer = pointerState{}
	c.scene.SetHover("")

	switch t {
	case ToolSelect:
		c.clearSelection()
	case ToolHome:
		c.cam.Scale = 1
		if c.snap != nil {
			_ = c.rebuild()
		}
	}
	c.logger.Debug("tool changed", "tool", t)
	c.changed()
}

// Selection returns the current selection.
func (c *Controller) Selection() Selection {
	d := c.scene.Selected()
	if d == nil {
		return Selection{}
	}
	return Selection{ID: d.ID(), Kind: d.Kind()}
}

func (c *Controller) selectID(id string) {
	before := c.Selection()
	c.scene.Select(id)
	if after := c.Selection(); after != before && c.hooks.OnSelect != nil {
		c.hooks.OnSelect(after)
	}
}

func (c *Controller) clearSelection() { c.selectID("") }

// InsertPerson adds p as an unconnected node centered on the screen point at,
// without laying out again. It reports false when the scene is empty or the
// identifier is taken.
func (c *Controller) InsertPerson(p snapshot.Person, at geom.Point) bool {
	if !c.scene.Insert(scene.NewNode(p, c.cam.ToModel(at))) {
		return false
	}
	if p.ImageURL != "" && c.loader != nil && c.post != nil {
		c.spawnImages(map[string]string{p.ID: p.ImageURL})
	}
	return true
}

func (c *Controller) changed() {
	if c.hooks.OnChange != nil {
		c.hooks.OnChange()
	}
}
