// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through the registered hooks without depending on a
// particular backend. The defaults are no-ops; a binary registers its own
// implementations once at startup.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnLoadStart(ctx, "neo4j", treeID)
//	// ... fetch snapshot ...
//	observability.Pipeline().OnLoadComplete(ctx, "neo4j", treeID, people, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the render pipeline.
type PipelineHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, source, treeID string)
	OnLoadComplete(ctx context.Context, source, treeID string, people int, duration time.Duration, err error)

	// Layout events
	OnLayoutStart(ctx context.Context, focalID string)
	OnLayoutComplete(ctx context.Context, focalID string, drawables int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives cache events. keyType is "snapshot", "artifact",
// "image" or the HTTP client's namespace.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the source and portrait HTTP clients.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError reports transport failures; status errors arrive via OnResponse.
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// Image Hooks
// =============================================================================

// ImageHooks receives events from portrait loading.
type ImageHooks interface {
	// OnImageLoad records a finished portrait load; err is nil on success.
	OnImageLoad(ctx context.Context, ref string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string, string) {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnLayoutStart(context.Context, string) {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// NoopImageHooks is a no-op implementation of ImageHooks.
type NoopImageHooks struct{}

func (NoopImageHooks) OnImageLoad(context.Context, string, time.Duration, error) {}

// =============================================================================
// Registry
// =============================================================================

var (
	hooksMu       sync.RWMutex
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	imageHooks    ImageHooks    = NoopImageHooks{}
)

// register replaces *slot with h unless h is nil.
func register[T any](slot *T, h T) {
	if any(h) == nil {
		return
	}
	hooksMu.Lock()
	defer hooksMu.Unlock()
	*slot = h
}

func current[T any](slot *T) T {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return *slot
}

// SetPipelineHooks registers pipeline hooks. Call it once at startup; nil is
// ignored, as for the other setters.
func SetPipelineHooks(h PipelineHooks) { register(&pipelineHooks, h) }
func SetCacheHooks(h CacheHooks)       { register(&cacheHooks, h) }
func SetHTTPHooks(h HTTPHooks)         { register(&httpHooks, h) }
func SetImageHooks(h ImageHooks)       { register(&imageHooks, h) }

func Pipeline() PipelineHooks { return current(&pipelineHooks) }
func Cache() CacheHooks       { return current(&cacheHooks) }
func HTTP() HTTPHooks         { return current(&httpHooks) }
func Image() ImageHooks       { return current(&imageHooks) }

// Reset restores the no-op hooks.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
	imageHooks = NoopImageHooks{}
}
