// Package config loads studio settings.
//
// Settings come from three layers, later layers winning:
//
//  1. built-in defaults;
//  2. a TOML file, ~/.config/studio/config.toml unless a path is given;
//  3. environment variables, including any defined in a .env file in the
//     working directory.
//
// Example file:
//
//	[gemini]
//	api_key = "..."
//	brief_model = "gemini-2.5-pro"
//	retries = 2
//
//	[store]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[cache]
//	backend = "file"
//
//	[fonts]
//	dirs = ["~/Library/Fonts/Brand"]
//
//	[export]
//	product_name = "spring-campaign"
//	format = "jpeg"
//	quality = 90
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	errs "github.com/matzehuels/designstudio/pkg/errors"
)

// AppName names the config, cache and store directories.
const AppName = "studio"

// Environment variables read by Load.
const (
	EnvGeminiKey   = "GEMINI_API_KEY"
	EnvStore       = "STUDIO_STORE"
	EnvRedisAddr   = "STUDIO_REDIS_ADDR"
	EnvMongoURI    = "STUDIO_MONGO_URI"
	EnvCache       = "STUDIO_CACHE"
	EnvCacheDir    = "STUDIO_CACHE_DIR"
	EnvStoreDir    = "STUDIO_STORE_DIR"
	EnvFontDirs    = "STUDIO_FONT_DIRS"
	EnvRedisDB     = "STUDIO_REDIS_DB"
	EnvRedisPass   = "STUDIO_REDIS_PASSWORD"
	EnvMongoDB     = "STUDIO_MONGO_DATABASE"
	EnvProduct     = "STUDIO_PRODUCT_NAME"
	EnvJPEGQuality = "STUDIO_JPEG_QUALITY"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Config is the complete settings tree.
type Config struct {
	Gemini GeminiConfig `toml:"gemini"`
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Fonts  FontsConfig  `toml:"fonts"`
	Export ExportConfig `toml:"export"`

	// Path is the file the config was read from, or "" if none existed.
	Path string `toml:"-"`
}

// GeminiConfig selects credentials and models. Empty models use the
// adapter's defaults.
type GeminiConfig struct {
	APIKey       string `toml:"api_key"`
	ImageModel   string `toml:"image_model"`
	EditModel    string `toml:"edit_model"`
	BriefModel   string `toml:"brief_model"`
	EnhanceModel string `toml:"enhance_model"`
	Retries      int    `toml:"retries"` // 0 disables retrying
}

// StoreConfig selects the template and usage store.
type StoreConfig struct {
	Backend         string `toml:"backend"` // memory, file, redis or mongo
	Dir             string `toml:"dir"`
	RedisAddr       string `toml:"redis_addr"`
	RedisPassword   string `toml:"redis_password"`
	RedisDB         int    `toml:"redis_db"`
	RedisPrefix     string `toml:"redis_prefix"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// CacheConfig selects the artifact cache.
type CacheConfig struct {
	Backend       string `toml:"backend"` // none, file or redis
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
}

// FontsConfig adds font directories searched before the system fonts.
type FontsConfig struct {
	Dirs   []string `toml:"dirs"`
	System *bool    `toml:"system"`
}

// UseSystem reports whether system fonts are searched. Default true.
func (f FontsConfig) UseSystem() bool { return f.System == nil || *f.System }

// ExportConfig holds export defaults.
type ExportConfig struct {
	ProductName string `toml:"product_name"`
	Format      string `toml:"format"`
	Quality     int    `toml:"quality"`
	OutputDir   string `toml:"output_dir"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Store: StoreConfig{Backend: BackendFile, RedisPrefix: "studio:store:"},
		Cache: CacheConfig{Backend: BackendFile, RedisPrefix: "studio:cache:"},
		Export: ExportConfig{
			ProductName: "design-studio",
			Format:      "png",
			Quality:     92,
			OutputDir:   ".",
		},
	}
}

// Load reads the config. An empty path reads the default file if it exists;
// an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		def, err := DefaultPath()
		if err == nil {
			path = def
		}
	}
	if path != "" {
		_, err := toml.DecodeFile(expandHome(path), cfg)
		switch {
		case err == nil:
			cfg.Path = path
		case !explicit && errors.Is(err, fs.ErrNotExist):
		default:
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read config %s", path)
		}
	}

	// A missing .env is normal; values already in the environment win.
	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Gemini.APIKey = getEnvOrDefault(EnvGeminiKey, c.Gemini.APIKey)
	c.Store.Backend = getEnvOrDefault(EnvStore, c.Store.Backend)
	c.Store.Dir = getEnvOrDefault(EnvStoreDir, c.Store.Dir)
	c.Store.MongoURI = getEnvOrDefault(EnvMongoURI, c.Store.MongoURI)
	c.Store.MongoDatabase = getEnvOrDefault(EnvMongoDB, c.Store.MongoDatabase)
	c.Cache.Backend = getEnvOrDefault(EnvCache, c.Cache.Backend)
	c.Cache.Dir = getEnvOrDefault(EnvCacheDir, c.Cache.Dir)
	c.Export.ProductName = getEnvOrDefault(EnvProduct, c.Export.ProductName)
	c.Export.Quality = getEnvAsIntOrDefault(EnvJPEGQuality, c.Export.Quality)

	// One Redis server usually serves both roles.
	if addr := os.Getenv(EnvRedisAddr); addr != "" {
		c.Store.RedisAddr = addr
		c.Cache.RedisAddr = addr
	}
	if pw := os.Getenv(EnvRedisPass); pw != "" {
		c.Store.RedisPassword = pw
		c.Cache.RedisPassword = pw
	}
	c.Store.RedisDB = getEnvAsIntOrDefault(EnvRedisDB, c.Store.RedisDB)
	c.Cache.RedisDB = getEnvAsIntOrDefault(EnvRedisDB, c.Cache.RedisDB)

	if dirs := os.Getenv(EnvFontDirs); dirs != "" {
		c.Fonts.Dirs = append(c.Fonts.Dirs, filepath.SplitList(dirs)...)
	}
}

// Validate checks backend names and their required settings.
func (c *Config) Validate() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))

	switch c.Store.Backend {
	case BackendMemory, BackendFile:
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return errs.New(errs.ErrCodeInvalidInput, "store backend redis needs redis_addr or %s", EnvRedisAddr)
		}
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return errs.New(errs.ErrCodeInvalidInput, "store backend mongo needs mongo_uri or %s", EnvMongoURI)
		}
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown store backend %q (want memory, file, redis or mongo)", c.Store.Backend)
	}

	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errs.New(errs.ErrCodeInvalidInput, "cache backend redis needs redis_addr or %s", EnvRedisAddr)
		}
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown cache backend %q (want none, file or redis)", c.Cache.Backend)
	}

	if c.Gemini.Retries < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "gemini retries %d must not be negative", c.Gemini.Retries)
	}
	if q := c.Export.Quality; q < 1 || q > 100 {
		return errs.New(errs.ErrCodeInvalidInput, "export quality %d outside 1-100", q)
	}
	if err := errs.ValidateProductName(c.Export.ProductName); err != nil {
		return err
	}
	for i, d := range c.Fonts.Dirs {
		c.Fonts.Dirs[i] = expandHome(d)
	}
	return nil
}

// =============================================================================
// Paths
// =============================================================================

// ConfigDir returns $XDG_CONFIG_HOME/studio or ~/.config/studio.
func ConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// CacheDir returns $XDG_CACHE_HOME/studio or ~/.cache/studio.
func CacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// StoreDir returns the file store directory, honoring Store.Dir.
func (c *Config) StoreDir() (string, error) {
	if c.Store.Dir != "" {
		return expandHome(c.Store.Dir), nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "store"), nil
}

// CacheDir returns the file cache directory, honoring Cache.Dir.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return expandHome(c.Cache.Dir), nil
	}
	return CacheDir()
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, fallback, AppName), nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
