package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/designstudio/pkg/cache"
	errs "github.com/matzehuels/designstudio/pkg/errors"
	"github.com/matzehuels/designstudio/pkg/store"
)

// isolate points every XDG path and studio variable at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for _, k := range []string{EnvGeminiKey, EnvStore, EnvRedisAddr, EnvMongoURI, EnvCache, EnvCacheDir,
		EnvStoreDir, EnvFontDirs, EnvRedisDB, EnvRedisPass, EnvMongoDB, EnvProduct, EnvJPEGQuality} {
		t.Setenv(k, "")
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want none", cfg.Path)
	}
	if cfg.Store.Backend != BackendFile || cfg.Cache.Backend != BackendFile {
		t.Errorf("backends = %s/%s, want file/file", cfg.Store.Backend, cfg.Cache.Backend)
	}
	if cfg.Export.Quality != 92 || cfg.Export.ProductName != "design-studio" {
		t.Errorf("export defaults = %+v", cfg.Export)
	}
	if !cfg.Fonts.UseSystem() {
		t.Error("system fonts should be on by default")
	}
	if cfg.Gemini.Retries != 0 {
		t.Errorf("Gemini.Retries = %d, want 0 by default", cfg.Gemini.Retries)
	}
}

func TestLoadDefaultFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config", AppName, "config.toml"), `
[gemini]
api_key = "from-file"
brief_model = "gemini-2.5-flash"
retries = 2

[store]
backend = "memory"

[fonts]
dirs = ["/opt/fonts"]
system = false

[export]
product_name = "spring"
quality = 80
`)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Path == "" {
		t.Error("Path should name the file that was read")
	}
	if cfg.Gemini.APIKey != "from-file" || cfg.Gemini.BriefModel != "gemini-2.5-flash" || cfg.Gemini.Retries != 2 {
		t.Errorf("Gemini = %+v", cfg.Gemini)
	}
	if cfg.Store.Backend != BackendMemory {
		t.Errorf("Store.Backend = %q", cfg.Store.Backend)
	}
	if cfg.Fonts.UseSystem() || len(cfg.Fonts.Dirs) != 1 {
		t.Errorf("Fonts = %+v", cfg.Fonts)
	}
	if cfg.Export.ProductName != "spring" || cfg.Export.Quality != 80 {
		t.Errorf("Export = %+v", cfg.Export)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	writeFile(t, path, "[gemini]\napi_key = \"from-file\"\n")

	t.Setenv(EnvGeminiKey, "from-env")
	t.Setenv(EnvStore, "Redis")
	t.Setenv(EnvRedisAddr, "localhost:6380")
	t.Setenv(EnvCache, "none")
	t.Setenv(EnvJPEGQuality, "75")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Gemini.APIKey != "from-env" {
		t.Errorf("APIKey = %q, env should win", cfg.Gemini.APIKey)
	}
	if cfg.Store.Backend != BackendRedis || cfg.Store.RedisAddr != "localhost:6380" || cfg.Cache.RedisAddr != "localhost:6380" {
		t.Errorf("redis settings = %+v / %+v", cfg.Store, cfg.Cache)
	}
	if cfg.Cache.Backend != BackendNone {
		t.Errorf("Cache.Backend = %q", cfg.Cache.Backend)
	}
	if cfg.Export.Quality != 75 {
		t.Errorf("Quality = %d", cfg.Export.Quality)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := isolate(t)
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{"bad toml", "[store\nbackend=", nil},
		{"unknown store", "[store]\nbackend = \"s3\"", nil},
		{"redis without addr", "[store]\nbackend = \"redis\"", nil},
		{"mongo without uri", "[store]\nbackend = \"mongo\"", nil},
		{"unknown cache", "[cache]\nbackend = \"memcached\"", nil},
		{"negative retries", "[gemini]\nretries = -1", nil},
		{"bad quality", "[export]\nquality = 101", nil},
		{"bad product", "[export]\nproduct_name = \"../x\"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".toml")
			writeFile(t, path, tt.content)
			_, err := Load(path)
			if !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Errorf("Load error = %v, want INVALID_INPUT", err)
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("an explicit missing path should fail")
	}
}

func TestPaths(t *testing.T) {
	dir := isolate(t)
	cfg := Default()

	got, err := cfg.StoreDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "config", AppName, "store"); got != want {
		t.Errorf("StoreDir = %q, want %q", got, want)
	}
	got, err = cfg.CacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "cache", AppName); got != want {
		t.Errorf("CacheDir = %q, want %q", got, want)
	}

	cfg.Cache.Dir = "~/studio-cache"
	home, _ := os.UserHomeDir()
	if got, _ := cfg.CacheDir(); got != filepath.Join(home, "studio-cache") {
		t.Errorf("CacheDir with ~ = %q", got)
	}
}

func TestCacheDirDefault(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	dir, err := CacheDir()
	if err != nil {
		t.Fatalf("CacheDir error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", AppName); dir != want {
		t.Errorf("CacheDir = %q, want %q", dir, want)
	}
}

func TestOpenBackends(t *testing.T) {
	isolate(t)
	ctx := context.Background()
	cfg := Default()

	s, err := cfg.OpenStore(ctx)
	if err != nil {
		t.Fatalf("OpenStore error: %v", err)
	}
	if _, ok := s.(*store.FileStore); !ok {
		t.Errorf("OpenStore = %T, want *store.FileStore", s)
	}

	cfg.Store.Backend = BackendMemory
	if s, _ := cfg.OpenStore(ctx); s == nil {
		t.Error("memory store should open")
	} else if _, ok := s.(*store.MemoryStore); !ok {
		t.Errorf("OpenStore = %T, want *store.MemoryStore", s)
	}

	c, err := cfg.OpenCache(ctx, false)
	if err != nil {
		t.Fatalf("OpenCache error: %v", err)
	}
	if _, ok := c.(*cache.FileCache); !ok {
		t.Errorf("OpenCache = %T, want *cache.FileCache", c)
	}
	if c, _ := cfg.OpenCache(ctx, true); c == nil {
		t.Error("noCache should return the null cache")
	} else if _, ok := c.(*cache.NullCache); !ok {
		t.Errorf("OpenCache(noCache) = %T, want *cache.NullCache", c)
	}
}
