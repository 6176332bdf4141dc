package view

import (
	"context"
	"image"
	"strings"
	"sync"
	"testing"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/geom"
	"github.com/matzehuels/kintree/pkg/scene"
	"github.com/matzehuels/kintree/pkg/snapshot"
)

func family() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Focal:           &snapshot.Person{ID: "a", FirstName: "Ada", Gender: "female"},
		Partner:         &snapshot.Person{ID: "b", FirstName: "Bert", Gender: "male"},
		PartnerChildren: []snapshot.Person{{ID: "c", FirstName: "Carla"}, {ID: "d", FirstName: "Dan"}},
	}
}

type recorder struct {
	selections []Selection
	recenters  []string
	menus      []ContextMenuRequest
	changes    int
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		OnSelect:      func(s Selection) { r.selections = append(r.selections, s) },
		OnRecenter:    func(id string) { r.recenters = append(r.recenters, id) },
		OnContextMenu: func(m ContextMenuRequest) { r.menus = append(r.menus, m) },
		OnChange:      func() { r.changes++ },
	}
}

func load(t *testing.T, opts ...Option) (*Controller, *recorder) {
	t.Helper()
	rec := &recorder{}
	c := New(append([]Option{WithHooks(rec.hooks())}, opts...)...)
	if err := c.Load(family()); err != nil {
		t.Fatal(err)
	}
	return c, rec
}

// screenOf returns the screen position of the center of node id.
func screenOf(t *testing.T, c *Controller, id string) geom.Point {
	t.Helper()
	n, ok := c.Scene().Node(id)
	if !ok {
		t.Fatalf("no node %q", id)
	}
	return c.Camera().ToScreen(n.Bounds().Center())
}

func TestLoadCentersFocal(t *testing.T) {
	c, rec := load(t)
	if got := screenOf(t, c, "a"); !near(got, geom.Point{X: 400, Y: 300}) {
		t.Errorf("focal at %v, want viewport center", got)
	}
	if rec.changes == 0 {
		t.Error("load did not request a repaint")
	}
}

func TestLoadInvalid(t *testing.T) {
	c := New()
	err := c.Load(&snapshot.Snapshot{})
	if errors.GetCode(err) != errors.ErrCodeInvalidSnapshot {
		t.Fatalf("err = %v", err)
	}
	if !c.Scene().Empty() {
		t.Error("invalid snapshot left drawables behind")
	}
}

func TestPanToolDrag(t *testing.T) {
	c, _ := load(t)
	before := c.Camera().Offset
	c.PointerDown(geom.Point{X: 10, Y: 10}, ButtonLeft)
	c.PointerMove(geom.Point{X: 25, Y: 5})
	c.PointerUp(geom.Point{X: 25, Y: 5})
	if got := c.Camera().Offset; !near(got, before.Add(15, -5)) {
		t.Errorf("offset = %v, want %v", got, before.Add(15, -5))
	}
}

func TestClickAfterDragIsSuppressed(t *testing.T) {
	c, rec := load(t)
	c.SetTool(ToolSelect)
	p := screenOf(t, c, "b")

	c.PointerDown(geom.Point{X: 1, Y: 1}, ButtonLeft)
	c.PointerMove(geom.Point{X: 2, Y: 2})
	c.PointerUp(geom.Point{X: 2, Y: 2})
	c.Click(p)
	if len(rec.selections) != 0 {
		t.Fatalf("click after drag selected %v", rec.selections)
	}
	c.Click(p)
	if len(rec.selections) != 1 || rec.selections[0].ID != "b" {
		t.Fatalf("selections = %v", rec.selections)
	}
}

func TestSelectAndClear(t *testing.T) {
	c, rec := load(t)
	c.SetTool(ToolSelect)

	c.Click(screenOf(t, c, "c"))
	if got := c.Selection(); got.ID != "c" || got.Kind != scene.KindNode {
		t.Fatalf("selection = %+v", got)
	}
	if !c.Scene().Selector().Active() {
		t.Error("selector inactive after selecting")
	}
	c.Click(geom.Point{X: -5000, Y: -5000})
	if !c.Selection().Empty() {
		t.Errorf("canvas click kept %+v", c.Selection())
	}
	if len(rec.selections) != 2 || !rec.selections[1].Empty() {
		t.Errorf("selections = %v", rec.selections)
	}
}

func TestClickIgnoredOutsideSelect(t *testing.T) {
	c, rec := load(t)
	c.Click(screenOf(t, c, "a"))
	if len(rec.selections) != 0 || !c.Selection().Empty() {
		t.Errorf("pan tool selected %+v", c.Selection())
	}
}

func TestHoverFollowsPointer(t *testing.T) {
	c, _ := load(t)
	p := screenOf(t, c, "d")

	c.PointerMove(p)
	if c.Scene().Hovered() != "" {
		t.Error("pan tool hovered")
	}
	c.SetTool(ToolSelect)
	c.PointerMove(p)
	if got := c.Scene().Hovered(); got != "d" {
		t.Errorf("hovered = %q, want d", got)
	}
	c.PointerLeave()
	if got := c.Scene().Hovered(); got != "" {
		t.Errorf("hover survived leave: %q", got)
	}
}

func TestDragSelectedNode(t *testing.T) {
	c, _ := load(t)
	c.SetTool(ToolSelect)
	p := screenOf(t, c, "c")
	c.Click(p)

	n, _ := c.Scene().Node("c")
	before := n.Bounds().Center()
	c.PointerDown(p, ButtonLeft)
	c.PointerMove(p.Add(30, 12))
	c.PointerUp(p.Add(30, 12))
	if got := n.Bounds().Center(); !near(got, before.Add(30, 12)) {
		t.Errorf("center = %v, want %v", got, before.Add(30, 12))
	}
}

func TestDoubleClickRecenters(t *testing.T) {
	c, rec := load(t)
	c.DoubleClick(screenOf(t, c, "b"))
	c.DoubleClick(geom.Point{X: -5000, Y: -5000})
	if len(rec.recenters) != 1 || rec.recenters[0] != "b" {
		t.Errorf("recenters = %v", rec.recenters)
	}
}

func TestContextMenu(t *testing.T) {
	c, rec := load(t)
	c.SetTool(ToolSelect)
	c.ContextMenu(screenOf(t, c, "a"))
	c.ContextMenu(geom.Point{X: -5000, Y: -5000})

	if len(rec.menus) != 2 {
		t.Fatalf("menus = %v", rec.menus)
	}
	if m := rec.menus[0]; m.Kind != "node" || m.ID != "a" {
		t.Errorf("first menu = %+v", m)
	}
	if m := rec.menus[1]; m.Kind != "canvas" || m.ID != "" {
		t.Errorf("second menu = %+v", m)
	}
	if !c.Selection().Empty() {
		t.Errorf("canvas menu kept selection %+v", c.Selection())
	}
}

func TestWheelZoomsAroundPointer(t *testing.T) {
	c, _ := load(t)
	at := geom.Point{X: 123, Y: 45}
	before := c.Camera().ToModel(at)
	c.Wheel(at, -1)
	if s := c.Camera().Scale; s <= 1 {
		t.Errorf("scale after wheel in = %v", s)
	}
	if after := c.Camera().ToModel(at); !near(before, after) {
		t.Errorf("anchor moved: %v -> %v", before, after)
	}
	c.Wheel(at, 1)
	if s := c.Camera().Scale; s < 1-1e-9 || s > 1+1e-9 {
		t.Errorf("scale after in/out = %v", s)
	}
}

func TestToolSwitches(t *testing.T) {
	c, _ := load(t)
	c.SetTool(ToolSelect)
	c.Click(screenOf(t, c, "a"))
	c.SetTool(ToolPan)
	c.SetTool(ToolSelect)
	if !c.Selection().Empty() {
		t.Error("entering select kept the old selection")
	}

	c.Zoom(geom.Point{}, 2)
	c.Scene().Move("a", 50, 0)
	c.SetTool(ToolHome)
	if c.Camera().Scale != 1 {
		t.Errorf("home scale = %v", c.Camera().Scale)
	}
	if got := screenOf(t, c, "a"); !near(got, geom.Point{X: 400, Y: 300}) {
		t.Errorf("home left focal at %v", got)
	}
}

func TestJumpTo(t *testing.T) {
	c, rec := load(t)
	c.SetJumpQuery("a")
	if len(c.Suggestions()) != 0 {
		t.Fatal("query accepted outside jump tool")
	}

	c.SetTool(ToolJumpTo)
	c.SetJumpQuery("A")
	var got []string
	for _, s := range c.Suggestions() {
		got = append(got, s.ID)
	}
	if strings.Join(got, ",") != "a,c,d" {
		t.Fatalf("suggestions = %v", got)
	}
	if c.JumpCursor() != 0 || c.Scene().Hovered() != "a" {
		t.Errorf("cursor = %d hovered = %q", c.JumpCursor(), c.Scene().Hovered())
	}

	c.JumpPrev()
	if c.JumpCursor() != 2 {
		t.Errorf("prev from first = %d, want 2", c.JumpCursor())
	}
	c.JumpNext()
	c.JumpNext()
	if c.JumpCursor() != 1 || c.Scene().Hovered() != "c" {
		t.Errorf("cursor = %d hovered = %q", c.JumpCursor(), c.Scene().Hovered())
	}
	if got := screenOf(t, c, "c"); !near(got, geom.Point{X: 400, Y: 300}) {
		t.Errorf("highlight not centered: %v", got)
	}

	if id, ok := c.JumpCommit(); !ok || id != "c" {
		t.Errorf("commit = %q, %v", id, ok)
	}
	if len(rec.recenters) != 1 || rec.recenters[0] != "c" {
		t.Errorf("recenters = %v", rec.recenters)
	}

	c.SetJumpQuery("zzz")
	if c.JumpCursor() != -1 || c.Scene().Hovered() != "" {
		t.Errorf("no match: cursor = %d hovered = %q", c.JumpCursor(), c.Scene().Hovered())
	}
	if _, ok := c.JumpCommit(); ok {
		t.Error("commit without suggestions")
	}

	c.SetJumpQuery("dan")
	c.SetTool(ToolPan)
	if c.JumpQuery() != "" || c.Scene().Hovered() != "" {
		t.Error("leaving jump tool kept the search")
	}
}

func TestInsertPerson(t *testing.T) {
	c, _ := load(t)
	at := geom.Point{X: 50, Y: 60}
	if !c.InsertPerson(snapshot.Person{ID: "z", FirstName: "Zoe"}, at) {
		t.Fatal("insert failed")
	}
	if got := screenOf(t, c, "z"); !near(got, at) {
		t.Errorf("inserted at %v, want %v", got, at)
	}
	if c.InsertPerson(snapshot.Person{ID: "z"}, at) {
		t.Error("duplicate id inserted")
	}
}

func TestViewportPixelSize(t *testing.T) {
	c := New()
	c.SetViewport(300.4, 200, 2)
	if w, h := c.PixelSize(); w != 601 || h != 400 {
		t.Errorf("pixel size = %dx%d", w, h)
	}
	c.SetViewport(10, 10, 0)
	if _, _, dpr := c.Viewport(); dpr != 1 {
		t.Errorf("dpr = %v, want fallback 1", dpr)
	}
}

func TestRenderAppliesCamera(t *testing.T) {
	c, _ := load(t)
	c.SetViewport(800, 600, 2)
	var r geom.Recorder
	c.Render(&r)

	if r.Depth() != 0 {
		t.Errorf("unbalanced push/pop: depth %d", r.Depth())
	}
	if len(r.Ops) < 6 {
		t.Fatalf("ops = %v", r.Ops)
	}
	if r.Ops[0] != "push" || r.Ops[2] != "clear-surface" || r.Ops[3] != "scale 2.000,2.000" {
		t.Errorf("prologue = %v", r.Ops[:4])
	}
	if !strings.HasPrefix(r.Ops[4], "translate ") || r.Ops[5] != "scale 1.000,1.000" {
		t.Errorf("camera ops = %v", r.Ops[4:6])
	}
}

type fakeLoader struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (l *fakeLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	l.mu.Lock()
	l.calls = append(l.calls, ref)
	l.mu.Unlock()
	if l.fail[ref] {
		return nil, errors.New(errors.ErrCodeNotFound, "no such image %q", ref)
	}
	return image.NewRGBA(image.Rect(0, 0, 3, 3)), nil
}

func withPortraits() *snapshot.Snapshot {
	s := family()
	s.Focal.ImageURL = "mem://a"
	s.Partner.ImageURL = "mem://b"
	return s
}

// queue collects posted callbacks so the test can run them as an event loop
// would.
type queue struct {
	mu  sync.Mutex
	fns []func()
}

func (q *queue) post(fn func()) {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
}

func (q *queue) drain() {
	q.mu.Lock()
	fns := q.fns
	q.fns = nil
	q.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func TestAsyncPortraits(t *testing.T) {
	q := &queue{}
	loader := &fakeLoader{fail: map[string]bool{"mem://b": true}}
	placeholder := image.NewRGBA(image.Rect(0, 0, 1, 1))
	c := New(WithImageLoader(loader), WithPost(q.post), WithPlaceholder(placeholder))
	if err := c.Load(withPortraits()); err != nil {
		t.Fatal(err)
	}
	c.WaitImages()

	a, _ := c.Scene().Node("a")
	if a.Image != nil {
		t.Fatal("portrait attached off the event loop")
	}
	q.drain()
	if a.Image == nil || a.Image == image.Image(placeholder) {
		t.Errorf("a image = %v", a.Image)
	}
	b, _ := c.Scene().Node("b")
	if b.Image != image.Image(placeholder) {
		t.Errorf("failed load should use the placeholder, got %v", b.Image)
	}
}

func TestStalePortraitsDropped(t *testing.T) {
	q := &queue{}
	c := New(WithImageLoader(&fakeLoader{}), WithPost(q.post))
	if err := c.Load(withPortraits()); err != nil {
		t.Fatal(err)
	}
	c.WaitImages()

	// Reload before the queued results reach the loop.
	s := withPortraits()
	s.Focal.ImageURL, s.Partner.ImageURL = "", ""
	if err := c.Load(s); err != nil {
		t.Fatal(err)
	}
	q.drain()
	for _, n := range c.Scene().Nodes() {
		if n.Image != nil {
			t.Errorf("stale portrait attached to %s", n.ID())
		}
	}
}

func TestInsertPersonLoadsPortrait(t *testing.T) {
	q := &queue{}
	c := New(WithImageLoader(&fakeLoader{}), WithPost(q.post))
	if err := c.Load(family()); err != nil {
		t.Fatal(err)
	}
	c.InsertPerson(snapshot.Person{ID: "z", ImageURL: "mem://z"}, geom.Point{})
	c.WaitImages()
	q.drain()
	if n, _ := c.Scene().Node("z"); n.Image == nil {
		t.Error("inserted person has no portrait")
	}
}

func TestAwaitImages(t *testing.T) {
	loader := &fakeLoader{}
	c := New(WithImageLoader(loader))
	if err := c.Load(withPortraits()); err != nil {
		t.Fatal(err)
	}
	if len(loader.calls) != 0 {
		t.Fatal("loads started without a post function")
	}
	c.AwaitImages(context.Background())
	for _, id := range []string{"a", "b"} {
		if n, _ := c.Scene().Node(id); n.Image == nil {
			t.Errorf("%s has no portrait", id)
		}
	}
}
