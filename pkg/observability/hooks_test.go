package observability

import (
	"context"
	"testing"
	"time"
)

type countingCache struct {
	NoopCacheHooks
	hits map[string]int
}

func (c *countingCache) OnCacheHit(_ context.Context, keyType string) { c.hits[keyType]++ }

func TestNoopHooks(t *testing.T) {
	Reset()
	ctx := context.Background()
	Pipeline().OnLoadStart(ctx, "file", "family.json")
	Pipeline().OnLayoutComplete(ctx, "p1", 30, time.Second, nil)
	Pipeline().OnRenderComplete(ctx, []string{"png"}, time.Second, nil)
	Cache().OnCacheSet(ctx, "artifact", 1024)
	HTTP().OnError(ctx, "GET", "trees.example", "/trees/t1", context.Canceled)
	Image().OnImageLoad(ctx, "https://img.example/a.png", time.Second, nil)
}

func TestRegistry(t *testing.T) {
	defer Reset()

	c := &countingCache{hits: map[string]int{}}
	SetCacheHooks(c)
	SetCacheHooks(nil)
	Cache().OnCacheHit(context.Background(), "snapshot")
	if c.hits["snapshot"] != 1 {
		t.Errorf("hits = %v, want snapshot=1", c.hits)
	}

	tests := []struct {
		name string
		set  func()
		ok   func() bool
	}{
		{"pipeline", func() { SetPipelineHooks(LogHooks{}) }, func() bool { _, ok := Pipeline().(LogHooks); return ok }},
		{"http", func() { SetHTTPHooks(LogHooks{}) }, func() bool { _, ok := HTTP().(LogHooks); return ok }},
		{"image", func() { SetImageHooks(LogHooks{}) }, func() bool { _, ok := Image().(LogHooks); return ok }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.set()
			if !tt.ok() {
				t.Error("hooks not registered")
			}
		})
	}

	Reset()
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset() should restore no-op cache hooks")
	}
	if _, ok := Image().(NoopImageHooks); !ok {
		t.Error("Reset() should restore no-op image hooks")
	}
}
