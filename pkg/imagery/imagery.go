// Package imagery loads person portraits for the renderer.
//
// [Loader] fetches portraits over HTTP (through a [cache.Cache]) or from the
// local filesystem, decodes PNG, JPEG, GIF and WebP, and crops them to a
// square thumbnail. [Placeholder] is the silhouette drawn when a portrait
// cannot be loaded.
package imagery

import (
	"bytes"
	"context"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/httputil"
	"github.com/matzehuels/kintree/pkg/observability"
)

// DefaultSize is the edge length of loaded thumbnails in pixels.
const DefaultSize = 88

// DefaultTTL is how long downloaded portraits stay cached.
const DefaultTTL = cache.TTLImage

// Option configures a [Loader].
type Option func(*Loader)

// WithSize sets the thumbnail edge length.
func WithSize(px int) Option { return func(l *Loader) { l.size = px } }

// WithLogger sets the logger for load failures.
func WithLogger(logger *log.Logger) Option { return func(l *Loader) { l.logger = logger } }

// WithClient replaces the HTTP client.
func WithClient(c *httputil.Client) Option { return func(l *Loader) { l.client = c } }

// Loader fetches and thumbnails portraits. It is safe for concurrent use when
// its cache is.
type Loader struct {
	client *httputil.Client
	keyer  cache.Keyer
	size   int
	logger *log.Logger
}

// NewLoader returns a loader that caches downloads in c. A nil keyer uses
// [cache.NewDefaultKeyer].
func NewLoader(c cache.Cache, keyer cache.Keyer, opts ...Option) *Loader {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	l := &Loader{
		client: httputil.NewClient(c, "", DefaultTTL, map[string]string{"Accept": "image/*"}),
		keyer:  keyer,
		size:   DefaultSize,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the thumbnail for ref, which is an http(s) URL, a file:// URL
// or a local path.
func (l *Loader) Load(ctx context.Context, ref string) (img image.Image, err error) {
	start := time.Now()
	defer func() { observability.Image().OnImageLoad(ctx, ref, time.Since(start), err) }()

	data, err := l.read(ctx, ref)
	if err != nil {
		l.logger.Debug("portrait load failed", "ref", ref, "error", err)
		return nil, err
	}
	if img, err = Decode(data); err != nil {
		return nil, err
	}
	return Thumbnail(img, l.size), nil
}

func (l *Loader) read(ctx context.Context, ref string) ([]byte, error) {
	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" || u.Scheme == "file" {
		path := ref
		if err == nil && u.Scheme == "file" {
			path = u.Path
		}
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "portrait %s", path)
		}
		return data, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New(errors.ErrCodeUnsupported, "portrait scheme %q", u.Scheme)
	}
	return l.client.CachedBytes(ctx, l.keyer.ImageKey(ref), func() ([]byte, error) {
		return l.client.GetBytes(ctx, ref)
	})
}

// Decode decodes any registered image format.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode portrait")
	}
	return img, nil
}

// Thumbnail crops img to a centered square and scales it to size pixels.
func Thumbnail(img image.Image, size int) image.Image {
	return imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)
}

// Placeholder draws a neutral head-and-shoulders silhouette.
func Placeholder(size int) image.Image {
	s := float64(size)
	dc := gg.NewContext(size, size)
	dc.SetColor(color.RGBA{0xe4, 0xe7, 0xeb, 0xff})
	dc.Clear()
	dc.SetColor(color.RGBA{0xa0, 0xa7, 0xb0, 0xff})
	dc.DrawCircle(s/2, s*0.38, s*0.18)
	dc.Fill()
	dc.DrawEllipse(s/2, s*0.98, s*0.34, s*0.32)
	dc.Fill()
	return dc.Image()
}
