// Package config loads typeviz settings from a TOML file.
//
// Every field has a default, so a missing file at the default location is
// not an error. Unknown keys are rejected so typos surface early. A few
// connection settings can be overridden from the environment:
//
//	TYPEVIZ_TYPEDB_ADDRESS   typedb.address
//	TYPEVIZ_TYPEDB_USERNAME  typedb.username
//	TYPEVIZ_TYPEDB_PASSWORD  typedb.password
//	TYPEVIZ_REDIS_ADDR       cache.redis.addr (and selects the redis backend)
package config

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/typeviz/pkg/convert"
	"github.com/matzehuels/typeviz/pkg/errors"
	"github.com/matzehuels/typeviz/pkg/render"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the full typeviz configuration.
type Config struct {
	Structure convert.StructureParameters `toml:"structure"`
	Style     render.Style                `toml:"style"`
	TypeDB    TypeDBConfig                `toml:"typedb"`
	Cache     CacheConfig                 `toml:"cache"`
	Server    ServerConfig                `toml:"server"`
}

// TypeDBConfig holds the HTTP endpoint and credentials of a TypeDB server.
type TypeDBConfig struct {
	Address  string   `toml:"address"`
	Username string   `toml:"username"`
	Password string   `toml:"password"`
	Database string   `toml:"database"`
	Timeout  Duration `toml:"timeout"`
}

// CacheConfig selects where query responses are cached.
type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	TTL     Duration    `toml:"ttl"`
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// ServerConfig configures `typeviz serve`.
type ServerConfig struct {
	Addr              string   `toml:"addr"`
	MaxBodyBytes      int64    `toml:"max_body_bytes"`
	ReadHeaderTimeout Duration `toml:"read_header_timeout"`
	ShutdownTimeout   Duration `toml:"shutdown_timeout"`
}

// Duration is a time.Duration written as a string such as "90s" or "1h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Structure: convert.DefaultStructureParameters(),
		Style:     render.DefaultStyle(),
		TypeDB: TypeDBConfig{
			Address:  "http://localhost:8000",
			Username: "admin",
			Timeout:  Duration{30 * time.Second},
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     Duration{time.Hour},
			Redis:   RedisConfig{Prefix: "typeviz:"},
		},
		Server: ServerConfig{
			Addr:              ":8080",
			MaxBodyBytes:      16 << 20,
			ReadHeaderTimeout: Duration{5 * time.Second},
			ShutdownTimeout:   Duration{15 * time.Second},
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/typeviz/config.toml, falling back to
// the platform user config directory.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			dir = "."
		}
	}
	return filepath.Join(dir, "typeviz", "config.toml")
}

// Load reads the configuration at path on top of [Default], applies
// environment overrides and validates the result. An empty path means
// [DefaultPath], which may be absent.
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultPath()
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	case os.IsNotExist(err):
		if !optional {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
	default:
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides connection settings from the environment. getenv is
// usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("TYPEVIZ_TYPEDB_ADDRESS"); v != "" {
		c.TypeDB.Address = v
	}
	if v := getenv("TYPEVIZ_TYPEDB_USERNAME"); v != "" {
		c.TypeDB.Username = v
	}
	if v := getenv("TYPEVIZ_TYPEDB_PASSWORD"); v != "" {
		c.TypeDB.Password = v
	}
	if v := getenv("TYPEVIZ_REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Backend = CacheRedis
	}
}

// Validate checks the configuration and normalizes style colors.
func (c *Config) Validate() error {
	for _, k := range c.Structure.IgnoreEdgesInvolvingLabels {
		if !k.Valid() {
			return errors.New(errors.ErrCodeInvalidConfig, "structure: unknown edge kind %q", k)
		}
	}
	if err := c.Style.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "style")
	}
	if c.TypeDB.Address != "" {
		if err := errors.ValidateURL(c.TypeDB.Address); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "typedb.address")
		}
	}
	if c.TypeDB.Database != "" {
		if err := errors.ValidateDatabaseName(c.TypeDB.Database); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "typedb.database")
		}
	}
	if !slices.Contains([]string{CacheFile, CacheRedis, CacheNone}, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be one of file, redis, none; got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.Redis.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis.addr is required for the redis backend")
	}
	if c.Cache.TTL.Duration < 0 || c.TypeDB.Timeout.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "durations must not be negative")
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr must not be empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_body_bytes must be positive")
	}
	return nil
}

// Write encodes c as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// WriteFile writes c to path, creating parent directories.
func (c *Config) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create config directory")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	if err := c.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
