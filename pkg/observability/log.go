package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug lines to a
// charm logger.
type LogHooks struct {
	Logger *log.Logger
}

var (
	_ PipelineHooks = LogHooks{}
	_ CacheHooks    = LogHooks{}
	_ HTTPHooks     = LogHooks{}
	_ ImageHooks    = LogHooks{}
)

// UseLogger registers [LogHooks] for all hook kinds.
func UseLogger(l *log.Logger) {
	h := LogHooks{Logger: l.WithPrefix("trace")}
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
	SetImageHooks(h)
}

func (h LogHooks) done(msg string, d time.Duration, err error, keyvals ...any) {
	keyvals = append(keyvals, "duration", d.Round(time.Microsecond))
	if err != nil {
		h.Logger.Debug(msg, append(keyvals, "error", err)...)
		return
	}
	h.Logger.Debug(msg, keyvals...)
}

func (h LogHooks) OnLoadStart(_ context.Context, source, treeID string) {
	h.Logger.Debug("load", "source", source, "tree", treeID)
}

func (h LogHooks) OnLoadComplete(_ context.Context, source, treeID string, people int, d time.Duration, err error) {
	h.done("loaded", d, err, "source", source, "tree", treeID, "people", people)
}

func (h LogHooks) OnLayoutStart(_ context.Context, focalID string) {
	h.Logger.Debug("layout", "focal", focalID)
}

func (h LogHooks) OnLayoutComplete(_ context.Context, focalID string, drawables int, d time.Duration, err error) {
	h.done("laid out", d, err, "focal", focalID, "drawables", drawables)
}

func (h LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render", "formats", formats)
}

func (h LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.done("rendered", d, err, "formats", formats)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.done("response", d, nil, "method", method, "host", host, "path", path, "status", status)
}

func (h LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Debug("request failed", "method", method, "host", host, "path", path, "error", err)
}

func (h LogHooks) OnImageLoad(_ context.Context, ref string, d time.Duration, err error) {
	h.done("portrait", d, err, "ref", ref)
}
