package cli

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	"github.com/bep/debounce"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/geom"
	"github.com/matzehuels/kintree/pkg/render/raster"
	"github.com/matzehuels/kintree/pkg/snapshot"
	"github.com/matzehuels/kintree/pkg/view"
)

const (
	// cellUnits is the width of one terminal cell in screen units; a cell
	// shows two stacked pixels of that size.
	cellUnits = 8.0

	// statusLines is the number of rows below the frame.
	statusLines = 2

	doubleClickWindow = 400 * time.Millisecond
	resizeSettle      = 120 * time.Millisecond
	panCells          = 4
)

var (
	viewerToolStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	viewerLabelStyle = lipgloss.NewStyle().Foreground(colorWhite)
	viewerDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	viewerCurStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	viewerErrStyle   = lipgloss.NewStyle().Foreground(colorRed)
)

type (
	// postMsg runs controller work on the event loop.
	postMsg func()

	snapshotMsg struct {
		snap *snapshot.Snapshot
		err  error
	}

	resizedMsg struct{ cols, rows int }
)

// loadFunc fetches the snapshot centered on a person.
type loadFunc func(ctx context.Context, focalID string) (*snapshot.Snapshot, error)

// viewer is the bubbletea model of `kintree view`. Terminal cells map to the
// controller's screen space through cellUnits; every frame is painted by the
// raster renderer and printed as half blocks.
type viewer struct {
	ctx     context.Context
	ctrl    *view.Controller
	load    loadFunc
	initial *snapshot.Snapshot

	// send delivers messages from other goroutines; nil applies resizes
	// immediately.
	send     func(tea.Msg)
	debounce func(func())

	cols, rows int
	sized      bool
	frame      string
	dirty      bool

	status    string
	statusErr bool
	recenter  string

	lastClick   time.Time
	lastClickAt [2]int
}

// newViewer builds the model. opts configure the controller; the viewer
// installs its own hooks and event-loop post.
func newViewer(ctx context.Context, initial *snapshot.Snapshot, load loadFunc, opts ...view.Option) *viewer {
	v := &viewer{
		ctx:      ctx,
		load:     load,
		initial:  initial,
		debounce: debounce.New(resizeSettle),
		dirty:    true,
	}
	opts = append(opts,
		view.WithContext(ctx),
		view.WithPost(v.post),
		view.WithHooks(view.Hooks{
			OnChange:   func() { v.dirty = true },
			OnRecenter: func(id string) { v.recenter = id },
			OnSelect: func(s view.Selection) {
				if s.Empty() {
					v.setStatus("")
					return
				}
				v.setStatus(fmt.Sprintf("selected %s %s", s.Kind, v.describe(s.ID)))
			},
			OnContextMenu: func(r view.ContextMenuRequest) {
				if r.ID == "" {
					v.setStatus(fmt.Sprintf("canvas menu at %.0f,%.0f", r.Model.X, r.Model.Y))
					return
				}
				v.setStatus(fmt.Sprintf("%s menu: %s", r.Kind, v.describe(r.ID)))
			},
		}),
	)
	v.ctrl = view.New(opts...)
	return v
}

func (v *viewer) post(f func()) {
	if v.send != nil {
		v.send(postMsg(f))
	}
}

func (v *viewer) setStatus(s string) { v.status, v.statusErr = s, false }

func (v *viewer) setError(err error) {
	v.status, v.statusErr = errors.UserMessage(err), true
}

// describe names a drawable for the status line.
func (v *viewer) describe(id string) string {
	if n, ok := v.ctrl.Scene().Node(id); ok {
		if rel := n.Relation(); rel != "" {
			return n.Label + " (" + rel + ")"
		}
		return n.Label
	}
	if r, ok := v.ctrl.Scene().Relationship(id); ok && r.Label != "" {
		return r.Label
	}
	return id
}

func (v *viewer) Init() tea.Cmd {
	snap := v.initial
	return func() tea.Msg { return snapshotMsg{snap: snap} }
}

func (v *viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case postMsg:
		msg()
	case snapshotMsg:
		if msg.err != nil {
			v.setError(msg.err)
			break
		}
		if err := v.ctrl.Load(msg.snap); err != nil {
			v.setError(err)
			break
		}
		v.setStatus("centered on " + msg.snap.Focal.DisplayName())
	case tea.WindowSizeMsg:
		v.resize(msg.Width, msg.Height)
	case resizedMsg:
		v.applySize(msg.cols, msg.rows)
	case tea.KeyMsg:
		if cmd := v.key(msg); cmd != nil {
			return v, cmd
		}
	case tea.MouseMsg:
		v.mouse(msg)
	}
	return v, v.recenterCmd()
}

// recenterCmd turns a pending re-center request into a snapshot load.
func (v *viewer) recenterCmd() tea.Cmd {
	id := v.recenter
	if id == "" || v.load == nil {
		return nil
	}
	v.recenter = ""
	v.setStatus("loading " + v.describe(id) + "...")
	ctx, load := v.ctx, v.load
	return func() tea.Msg {
		snap, err := load(ctx, id)
		return snapshotMsg{snap: snap, err: err}
	}
}

// resize applies the first size at once and debounces the rest, so a
// dragged terminal edge repaints once it settles.
func (v *viewer) resize(cols, rows int) {
	if !v.sized || v.send == nil {
		v.applySize(cols, rows)
		return
	}
	send := v.send
	v.debounce(func() { send(resizedMsg{cols: cols, rows: rows}) })
}

func (v *viewer) applySize(cols, rows int) {
	v.cols, v.rows = cols, rows
	frameRows := max(rows-statusLines, 1)
	v.ctrl.SetViewport(float64(cols)*cellUnits, float64(frameRows*2)*cellUnits, 1/cellUnits)
	if !v.sized {
		v.ctrl.Center()
	}
	v.sized = true
}

// toScreen maps a terminal cell to the center of its area in screen units.
func toScreen(x, y int) geom.Point {
	return geom.Point{X: (float64(x) + 0.5) * cellUnits, Y: (float64(y)*2 + 1) * cellUnits}
}

func (v *viewer) center() geom.Point {
	w, h, _ := v.ctrl.Viewport()
	return geom.Point{X: w / 2, Y: h / 2}
}

func (v *viewer) key(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if v.ctrl.Tool() == view.ToolJumpTo {
		v.jumpKey(msg)
		return nil
	}

	switch msg.String() {
	case "q":
		return tea.Quit
	case "p":
		v.ctrl.SetTool(view.ToolPan)
	case "s":
		v.ctrl.SetTool(view.ToolSelect)
	case "/", "j":
		v.ctrl.SetTool(view.ToolJumpTo)
	case "h", "0":
		v.ctrl.SetTool(view.ToolHome)
	case "c":
		v.ctrl.Center()
	case "left":
		v.ctrl.Pan(panCells*cellUnits, 0)
	case "right":
		v.ctrl.Pan(-panCells*cellUnits, 0)
	case "up":
		v.ctrl.Pan(0, panCells*cellUnits)
	case "down":
		v.ctrl.Pan(0, -panCells*cellUnits)
	case "+", "=":
		v.ctrl.Zoom(v.center(), view.ZoomStep)
	case "-":
		v.ctrl.Zoom(v.center(), 1/view.ZoomStep)
	case "n":
		p := snapshot.Person{ID: uuid.NewString(), FirstName: "New person"}
		if v.ctrl.InsertPerson(p, v.center()) {
			v.setStatus("added " + p.ID)
		}
	}
	return nil
}

func (v *viewer) jumpKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEsc:
		v.ctrl.SetTool(view.ToolPan)
	case tea.KeyEnter:
		if id, ok := v.ctrl.JumpCommit(); ok {
			v.ctrl.SetTool(view.ToolPan)
			v.recenter = id
		}
	case tea.KeyTab:
		v.ctrl.JumpNext()
	case tea.KeyShiftTab:
		v.ctrl.JumpPrev()
	case tea.KeyBackspace:
		if q := []rune(v.ctrl.JumpQuery()); len(q) > 0 {
			v.ctrl.SetJumpQuery(string(q[:len(q)-1]))
		}
	case tea.KeyRunes, tea.KeySpace:
		v.ctrl.SetJumpQuery(v.ctrl.JumpQuery() + string(msg.Runes))
	}
}

func (v *viewer) mouse(msg tea.MouseMsg) {
	p := toScreen(msg.X, msg.Y)
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		v.ctrl.Wheel(p, -1)
	case msg.Button == tea.MouseButtonWheelDown:
		v.ctrl.Wheel(p, 1)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		v.ctrl.PointerDown(p, view.ButtonLeft)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonRight:
		v.ctrl.ContextMenu(p)
	case msg.Action == tea.MouseActionMotion:
		v.ctrl.PointerMove(p)
	case msg.Action == tea.MouseActionRelease:
		dragged := v.ctrl.Dragged()
		v.ctrl.PointerUp(p)
		v.ctrl.Click(p)
		now, at := time.Now(), [2]int{msg.X, msg.Y}
		switch {
		case dragged:
			now = time.Time{}
		case at == v.lastClickAt && now.Sub(v.lastClick) < doubleClickWindow:
			v.ctrl.DoubleClick(p)
			now = time.Time{}
		}
		v.lastClick, v.lastClickAt = now, at
	}
}

func (v *viewer) View() string {
	if !v.sized {
		return "loading..."
	}
	if v.dirty {
		v.frame = halfBlocks(raster.Frame(v.ctrl))
		v.dirty = false
	}
	return v.frame + "\n" + v.statusLine() + "\n" + v.helpLine()
}

func (v *viewer) statusLine() string {
	var b strings.Builder
	b.WriteString(viewerToolStyle.Render(v.ctrl.Tool().String()))
	b.WriteString(viewerDimStyle.Render(fmt.Sprintf(" %3.0f%% ", v.ctrl.Camera().Scale*100)))

	if v.ctrl.Tool() == view.ToolJumpTo {
		b.WriteString(viewerLabelStyle.Render("/" + v.ctrl.JumpQuery() + "▏"))
		for i, s := range v.ctrl.Suggestions() {
			b.WriteString(" ")
			if i == v.ctrl.JumpCursor() {
				b.WriteString(viewerCurStyle.Render(s.Label))
			} else {
				b.WriteString(viewerDimStyle.Render(s.Label))
			}
		}
		return b.String()
	}

	if id := v.ctrl.Scene().Hovered(); id != "" {
		b.WriteString(viewerLabelStyle.Render(v.describe(id)) + " ")
	}
	if v.statusErr {
		b.WriteString(viewerErrStyle.Render(v.status))
	} else {
		b.WriteString(viewerDimStyle.Render(v.status))
	}
	return b.String()
}

func (v *viewer) helpLine() string {
	if v.ctrl.Tool() == view.ToolJumpTo {
		return viewerDimStyle.Render("type to search  tab/shift+tab cycle  ⏎ re-center  esc cancel")
	}
	return viewerDimStyle.Render("p pan  s select  / jump  h home  c center  arrows move  +/- zoom  n new person  q quit")
}

// halfBlocks prints img with one cell per two vertically stacked pixels: the
// upper pixel is the foreground of "▀" and the lower one the background.
func halfBlocks(img image.Image) string {
	b := img.Bounds()
	var out strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			out.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			top := img.At(x, y)
			bottom := top
			if y+1 < b.Max.Y {
				bottom = img.At(x, y+1)
			}
			out.WriteString(lipgloss.NewStyle().
				Foreground(hexColor(top)).
				Background(hexColor(bottom)).
				Render("▀"))
		}
	}
	return out.String()
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
