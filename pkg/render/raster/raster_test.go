package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"testing"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/scene"
	"github.com/matzehuels/kintree/pkg/snapshot"
)

func family() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Focal:           &snapshot.Person{ID: "a", FirstName: "Ada", ImageURL: "mem://a"},
		Partner:         &snapshot.Person{ID: "b", FirstName: "Bert"},
		PartnerChildren: []snapshot.Person{{ID: "c", FirstName: "Cleo"}},
	}
}

type solidLoader struct{ calls int }

func (l *solidLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	l.calls++
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func TestRenderPNGFixedSize(t *testing.T) {
	data, err := RenderPNG(context.Background(), family(), WithSize(320, 200), WithDPR(2))
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 400 {
		t.Errorf("size = %dx%d, want 640x400", b.Dx(), b.Dy())
	}
}

func TestRenderPNGFitsScene(t *testing.T) {
	c, err := Controller(context.Background(), family(), WithMargin(10))
	if err != nil {
		t.Fatal(err)
	}
	b := c.Scene().Bounds()
	w, h := c.PixelSize()
	if float64(w) < b.W+20 || float64(h) < b.H+20 {
		t.Errorf("viewport %dx%d does not fit bounds %+v", w, h, b)
	}
	top := c.Camera().ToScreen(b.Center())
	if top.X <= 0 || top.Y <= 0 || top.X >= float64(w) || top.Y >= float64(h) {
		t.Errorf("scene center off screen at %v", top)
	}
}

func TestControllerLoadsPortraits(t *testing.T) {
	l := &solidLoader{}
	c, err := Controller(context.Background(), family(), WithImageLoader(l), WithSize(100, 100))
	if err != nil {
		t.Fatal(err)
	}
	if l.calls != 1 {
		t.Errorf("loader calls = %d, want 1", l.calls)
	}
	if n, _ := c.Scene().Node("a"); n.Image == nil {
		t.Error("portrait not attached")
	}
}

func TestRenderPNGInvalid(t *testing.T) {
	_, err := RenderPNG(context.Background(), &snapshot.Snapshot{})
	if !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
		t.Errorf("err = %v", err)
	}
}

func TestStyleKeepsFaces(t *testing.T) {
	st, err := Style(scene.DarkStyle())
	if err != nil {
		t.Fatal(err)
	}
	if st.Face == nil || st.SmallFace == nil {
		t.Fatal("faces not filled")
	}
	again, err := Style(st)
	if err != nil || again.Face != st.Face {
		t.Error("existing faces replaced")
	}
}

func TestFrameBackground(t *testing.T) {
	c, err := Controller(context.Background(), family(), WithSize(2000, 2000), WithStyle(scene.DarkStyle()))
	if err != nil {
		t.Fatal(err)
	}
	img := Frame(c)
	r, g, b, _ := img.At(0, 0).RGBA()
	wr, wg, wb, _ := scene.DarkStyle().Background.RGBA()
	if r != wr || g != wg || b != wb {
		t.Errorf("corner = %v, want background", img.At(0, 0))
	}
}

func TestControllerRejectsOversizedSurface(t *testing.T) {
	wide := family()
	for i := range 200 {
		id := fmt.Sprintf("k%d", i)
		wide.PartnerChildren = append(wide.PartnerChildren, snapshot.Person{ID: id, FirstName: id})
	}
	tests := []struct {
		name string
		snap *snapshot.Snapshot
		opts []Option
	}{
		{"fitted dpr", family(), []Option{WithDPR(1000)}},
		{"fitted scene", wide, []Option{WithDPR(4)}},
		{"fixed size", family(), []Option{WithSize(5000, 100), WithDPR(2)}},
		{"nan dpr", family(), []Option{WithDPR(math.NaN())}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Controller(context.Background(), tt.snap, tt.opts...)
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("err = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestFitWithinBounds(t *testing.T) {
	c, err := Controller(context.Background(), family(), WithDPR(MaxDPR))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if w, h := c.PixelSize(); float64(w) > MaxSide || float64(h) > MaxSide {
		t.Errorf("surface %dx%d exceeds %v", w, h, MaxSide)
	}
}
