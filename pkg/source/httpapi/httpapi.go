// Package httpapi fetches snapshots from a remote tree service over HTTP.
//
// The service exposes GET {base}/trees/{treeID}/snapshot?focal={personID}
// returning snapshot JSON, which is what `kintree serve` answers. Responses
// are cached through [httputil.Client].
package httpapi

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/httputil"
	"github.com/matzehuels/kintree/pkg/snapshot"
)

// DefaultTTL is how long fetched snapshots stay cached.
const DefaultTTL = cache.TTLSnapshot

// Client is a snapshot source backed by a tree service.
type Client struct {
	http    *httputil.Client
	keyer   cache.Keyer
	base    string
	refresh bool
}

// NewClient creates a client for the service at baseURL. A non-empty token is
// sent as a bearer token. Snapshots are cached in c for ttl; a nil c disables
// caching.
func NewClient(c cache.Cache, baseURL, token string, ttl time.Duration) *Client {
	headers := map[string]string{"Accept": "application/json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		http:  httputil.NewClient(c, "", ttl, headers),
		keyer: cache.NewDefaultKeyer(),
		base:  strings.TrimSuffix(baseURL, "/"),
	}
}

// WithRefresh makes the client bypass cached snapshots.
func (c *Client) WithRefresh(refresh bool) *Client {
	c.refresh = refresh
	return c
}

// HTTP returns the underlying HTTP client.
func (c *Client) HTTP() *httputil.Client { return c.http }

// Snapshot fetches the snapshot around focalID from the remote service.
func (c *Client) Snapshot(ctx context.Context, treeID, focalID string) (*snapshot.Snapshot, error) {
	if treeID == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tree id is required")
	}
	u := c.base + "/trees/" + url.PathEscape(treeID) + "/snapshot"
	if focalID != "" {
		u += "?" + url.Values{"focal": {focalID}}.Encode()
	}

	var s snapshot.Snapshot
	key := c.keyer.SnapshotKey(c.base, treeID, focalID)
	err := c.http.Cached(ctx, key, c.refresh, &s, func() error {
		return c.http.Get(ctx, u, &s)
	})
	if errors.Is(err, errors.ErrCodeNotFound) {
		return nil, errors.Wrap(errors.ErrCodeSnapshotNotFound, err, "tree %s", treeID)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
