// Package cache stores byte blobs for the render pipeline and portrait loader.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache] for
// the HTTP service and [NullCache] when caching is disabled. Keys come from a
// [Keyer] so that every producer of a key agrees on its shape.
package cache

import (
	"context"
	"time"
)

// TTLs for each kind of cached value.
const (
	TTLSnapshot = 10 * time.Minute
	TTLArtifact = 24 * time.Hour
	TTLImage    = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// HTTPKey keys a cached HTTP response body.
	HTTPKey(namespace, key string) string
	// SnapshotKey keys a snapshot fetched from a source.
	SnapshotKey(source, treeID, focalID string) string
	// ArtifactKey keys a rendered artifact of a snapshot.
	ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string
	// ImageKey keys a downloaded portrait.
	ImageKey(url string) string
}

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	DPR    float64 `json:"dpr,omitempty"`
	Theme  string  `json:"theme,omitempty"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey keeps the key readable; HTTP keys are already short.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// SnapshotKey hashes the source, tree and focal person.
func (DefaultKeyer) SnapshotKey(source, treeID, focalID string) string {
	return hashKey("snapshot", source, treeID, focalID)
}

// ArtifactKey hashes the snapshot hash with the render options.
func (DefaultKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", snapshotHash, opts)
}

// ImageKey hashes the portrait URL.
func (DefaultKeyer) ImageKey(url string) string {
	return hashKey("image", url)
}

var _ Keyer = DefaultKeyer{}
