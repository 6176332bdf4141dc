// Package config loads kintree's TOML configuration file.
//
// The file lives at $XDG_CONFIG_HOME/kintree/config.toml (~/.config/kintree
// when XDG_CONFIG_HOME is unset). Every key is optional; command-line flags
// override whatever the file sets.
//
//	[render]
//	width  = 1200
//	height = 800
//	dpr    = 2
//	theme  = "dark"
//
//	[cache]
//	backend    = "redis"
//	redis_addr = "localhost:6379"
//	ttl        = "12h"
//
//	[source]
//	kind      = "neo4j"
//	neo4j_uri = "neo4j://localhost:7687"
//
//	[server]
//	addr = ":8080"
package config

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/render/raster"
	"github.com/matzehuels/kintree/pkg/scene"
)

// AppName names the configuration and cache directories.
const AppName = "kintree"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Source kinds.
const (
	SourceFile  = "file"
	SourceHTTP  = "http"
	SourceNeo4j = "neo4j"
	SourceMongo = "mongo"
)

// Config is the parsed configuration file.
type Config struct {
	Render Render `toml:"render"`
	Cache  Cache  `toml:"cache"`
	Source Source `toml:"source"`
	Server Server `toml:"server"`
}

// Render holds raster output defaults. A zero width and height fit the
// scene.
type Render struct {
	Width      float64 `toml:"width"`
	Height     float64 `toml:"height"`
	DPR        float64 `toml:"dpr"`
	Theme      string  `toml:"theme"`
	Background string  `toml:"background"` // #rrggbb, overrides the theme
}

// Cache selects the cache backend.
type Cache struct {
	Backend   string        `toml:"backend"`
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr"`
	TTL       time.Duration `toml:"ttl"`
	// Namespace prefixes every key, so deployments can share a backend.
	Namespace string `toml:"namespace"`
}

// Source selects where snapshots come from.
type Source struct {
	Kind string `toml:"kind"`

	Path    string `toml:"path"`
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`

	Neo4jURI      string `toml:"neo4j_uri"`
	Neo4jUser     string `toml:"neo4j_user"`
	Neo4jPassword string `toml:"neo4j_password"`
	Neo4jDatabase string `toml:"neo4j_database"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Server configures `kintree serve`.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Render.DPR == 0 {
		c.Render.DPR = 1
	}
	if c.Render.Theme == "" {
		c.Render.Theme = "light"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheFile
	}
	if c.Cache.Backend == CacheFile && c.Cache.Dir == "" {
		if dir, err := CacheDir(); err == nil {
			c.Cache.Dir = dir
		}
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = "localhost:6379"
	}
	if c.Source.Kind == "" {
		c.Source.Kind = SourceFile
	}
	if c.Source.Neo4jUser == "" {
		c.Source.Neo4jUser = "neo4j"
	}
	if c.Source.Neo4jDatabase == "" {
		c.Source.Neo4jDatabase = "neo4j"
	}
	if c.Source.MongoDatabase == "" {
		c.Source.MongoDatabase = AppName
	}
	if c.Source.MongoCollection == "" {
		c.Source.MongoCollection = "snapshots"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Render.Width < 0 || c.Render.Height < 0 || c.Render.DPR < 0:
		return invalid("render: width, height and dpr must not be negative")
	case math.IsNaN(c.Render.DPR) || c.Render.DPR > raster.MaxDPR:
		return invalid("render: dpr must not exceed %v", raster.MaxDPR)
	case (c.Render.Width == 0) != (c.Render.Height == 0):
		return invalid("render: width and height must be set together")
	}
	if _, ok := scene.Themes[c.Render.Theme]; !ok {
		return invalid("render: unknown theme %q", c.Render.Theme)
	}
	if c.Render.Background != "" {
		if _, err := ParseHex(c.Render.Background); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render: background")
		}
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return invalid("cache: redis backend needs redis_addr")
		}
	default:
		return invalid("cache: unknown backend %q (must be file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return invalid("cache: ttl must not be negative")
	}

	switch c.Source.Kind {
	case SourceFile:
	case SourceHTTP:
		if err := errors.ValidateURL(c.Source.BaseURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "source: base_url")
		}
	case SourceNeo4j:
		if c.Source.Neo4jURI == "" {
			return invalid("source: neo4j source needs neo4j_uri")
		}
	case SourceMongo:
		if c.Source.MongoURI == "" {
			return invalid("source: mongo source needs mongo_uri")
		}
	default:
		return invalid("source: unknown kind %q (must be file, http, neo4j or mongo)", c.Source.Kind)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, format, args...)
}

// Style returns the scene style of the configured theme with the background
// override applied. Call it on a validated configuration.
func (r Render) Style() scene.Style {
	st, _ := scene.ThemeStyle(r.Theme)
	if bg, err := ParseHex(r.Background); err == nil {
		st.Background = bg
	}
	return st
}

// ParseHex parses a #rrggbb color.
func ParseHex(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("color %q is not #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q is not #rrggbb: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Load reads the file at path, applies defaults and validates the result.
// An empty path reads the default location, where a missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	c := &Config{}
	md, err := toml.DecodeFile(path, c)
	switch {
	case err == nil:
	case os.IsNotExist(err) && !explicit:
		return Default(), nil
	case os.IsNotExist(err):
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	default:
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, invalid("%s: unknown key %q", path, undecoded[0].String())
	}

	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Write encodes c as TOML to path, creating parent directories.
func Write(c *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Path returns the default configuration file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the cache directory using XDG standard (~/.cache/kintree/).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
