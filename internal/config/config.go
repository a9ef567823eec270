// Package config loads labelgraph settings from a TOML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the config file, environment
// variables, command-line flags. Flags are applied by the CLI; this package
// handles the first three.
//
// Example labelgraph.toml:
//
//	input  = "data/Complete_OctavateArtistsList.json"
//	output = "out/Simplified_OctavateGraph.json"
//
//	[cache]
//	backend   = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl       = "24h"
//
//	[render]
//	types    = ["label", "sublabel", "artist"]
//	detailed = false
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	lgerrors "github.com/octavate/labelgraph/pkg/errors"
	"github.com/octavate/labelgraph/pkg/labelgraph"
)

// FileName is the project-local config file looked up in the working directory.
const FileName = "labelgraph.toml"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Environment variables that override file settings.
const (
	EnvMongoURI      = "LABELGRAPH_MONGO_URI"
	EnvNeo4jPassword = "LABELGRAPH_NEO4J_PASSWORD"
	EnvRedisURL      = "LABELGRAPH_REDIS_URL"
)

// DefaultAddr is the HTTP listen address used by serve.
const DefaultAddr = "127.0.0.1:8080"

// Config is the full configuration.
type Config struct {
	// Input is the default label document.
	Input string `toml:"input"`
	// Output is the graph file. Empty means next to the input.
	Output string `toml:"output"`
	// Log is the malformed-entry log. Empty means next to the input.
	Log string `toml:"log"`

	Cache  CacheConfig  `toml:"cache"`
	Mongo  MongoConfig  `toml:"mongo"`
	Neo4j  Neo4jConfig  `toml:"neo4j"`
	Server ServerConfig `toml:"server"`
	Render RenderConfig `toml:"render"`

	// Path is the file the config was read from, if any.
	Path string `toml:"-"`
}

// CacheConfig selects and tunes the conversion cache.
type CacheConfig struct {
	Backend  string        `toml:"backend"`
	Dir      string        `toml:"dir"`
	RedisURL string        `toml:"redis_url"`
	TTL      time.Duration `toml:"ttl"`
	Prefix   string        `toml:"prefix"`
}

// MongoConfig locates the run store used by publish.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Neo4jConfig locates the graph database used by publish.
type Neo4jConfig struct {
	URI      string `toml:"uri"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

// ServerConfig configures serve.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// RenderConfig holds render defaults.
type RenderConfig struct {
	Types    []string `toml:"types"`
	Detailed bool     `toml:"detailed"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Cache:  CacheConfig{Backend: BackendFile},
		Server: ServerConfig{Addr: DefaultAddr},
		Neo4j:  Neo4jConfig{Username: "neo4j"},
	}
}

// Load reads the config at path, or the first file found by [Find] when path
// is empty. A missing default file is not an error; a missing explicit file
// is. Environment overrides are applied and the result is validated.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = Find()
	}

	cfg := Default()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			if !explicit && errors.Is(err, fs.ErrNotExist) {
				path = ""
			} else {
				return nil, err
			}
		}
	}
	cfg.Path = path
	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML text on top of the defaults. Paths stay as written.
func Parse(data string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, lgerrors.Wrap(lgerrors.ErrCodeInvalidConfig, err, "parse config")
	}
	if err := checkUndecoded(md); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Find returns the first existing config file: ./labelgraph.toml, then
// $XDG_CONFIG_HOME/labelgraph/config.toml. It returns "" if neither exists.
func Find() string {
	candidates := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "labelgraph", "config.toml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if errors.Is(err, fs.ErrNotExist) {
		return lgerrors.Wrap(lgerrors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return lgerrors.Wrap(lgerrors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := checkUndecoded(md); err != nil {
		return err
	}

	// Relative paths are relative to the config file.
	base := filepath.Dir(path)
	for _, p := range []*string{&c.Input, &c.Output, &c.Log, &c.Cache.Dir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	return nil
}

func checkUndecoded(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	return lgerrors.New(lgerrors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvMongoURI); v != "" {
		c.Mongo.URI = v
	}
	if v := getenv(EnvNeo4jPassword); v != "" {
		c.Neo4j.Password = v
	}
	if v := getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
	}
}

var (
	mongoSchemes = []string{"mongodb", "mongodb+srv"}
	neo4jSchemes = []string{"neo4j", "neo4j+s", "neo4j+ssc", "bolt", "bolt+s", "bolt+ssc"}
	redisSchemes = []string{"redis", "rediss"}
)

// Validate checks enumerations and URIs.
func (c *Config) Validate() error {
	if !slices.Contains([]string{BackendFile, BackendRedis, BackendNone}, c.Cache.Backend) {
		return lgerrors.New(lgerrors.ErrCodeInvalidConfig, "cache.backend: %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return lgerrors.New(lgerrors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if c.Cache.Backend == BackendRedis {
		if c.Cache.RedisURL == "" {
			return lgerrors.New(lgerrors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
		if err := lgerrors.ValidateURI(c.Cache.RedisURL, redisSchemes...); err != nil {
			return err
		}
	}
	if c.Mongo.URI != "" {
		if err := lgerrors.ValidateURI(c.Mongo.URI, mongoSchemes...); err != nil {
			return err
		}
	}
	if c.Neo4j.URI != "" {
		if err := lgerrors.ValidateURI(c.Neo4j.URI, neo4jSchemes...); err != nil {
			return err
		}
	}
	if _, unknown := labelgraph.ParseNodeTypes(strings.Join(c.Render.Types, ",")); len(unknown) > 0 {
		return lgerrors.New(lgerrors.ErrCodeInvalidConfig, "render.types: unknown node types %q", unknown)
	}
	return nil
}

// RenderTypes returns the configured render node types, or the default view
// types when none are set.
func (c *Config) RenderTypes() []labelgraph.NodeType {
	types, _ := labelgraph.ParseNodeTypes(strings.Join(c.Render.Types, ","))
	if len(types) == 0 {
		return labelgraph.DefaultViewTypes
	}
	return types
}
