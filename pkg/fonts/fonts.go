// Package fonts resolves CSS font families and weights to TrueType faces.
//
// A [Registry] looks for a font in four places, in order:
//
//  1. font files registered with [Registry.Register] or [Registry.RegisterTTF]
//  2. directories passed with [WithDirs]
//  3. the platform font directories (see [WithSystemFonts])
//  4. the Go font family embedded in golang.org/x/image/font/gofont
//
// The last step always succeeds, so [Registry.Face] never fails: a layout
// that names a font the machine does not have still renders, in Go Regular,
// Go Medium or Go Bold depending on the requested weight.
//
// Parsed fonts are cached per registry. A Registry is safe for concurrent use.
package fonts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/cases"
)

// Source describes where a resolved font came from.
type Source string

const (
	SourceRegistered Source = "registered"
	SourceDir        Source = "dir"
	SourceSystem     Source = "system"
	SourceFallback   Source = "fallback"
)

// Option configures a Registry.
type Option func(*Registry)

// WithDirs adds directories that are searched for font files before the
// system font directories.
func WithDirs(dirs ...string) Option {
	return func(r *Registry) { r.dirs = append(r.dirs, dirs...) }
}

// WithSystemFonts enables or disables the platform font directory search.
// It is enabled by default.
func WithSystemFonts(enabled bool) Option {
	return func(r *Registry) { r.system = enabled }
}

// WithLogger sets the logger used for lookup diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

type resolved struct {
	font   *truetype.Font
	source Source
	path   string
}

// Registry maps family/weight pairs to parsed TrueType fonts.
type Registry struct {
	dirs   []string
	system bool
	logger *log.Logger

	mu         sync.RWMutex
	registered map[string]map[Weight]*truetype.Font
	resolved   map[string]resolved
	byPath     map[string]*truetype.Font
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		system:     true,
		registered: make(map[string]map[Weight]*truetype.Font),
		resolved:   make(map[string]resolved),
		byPath:     make(map[string]*truetype.Font),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	return r
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry with system lookup enabled.
func Default() *Registry {
	defaultRegistryOnce.Do(func() { defaultRegistry = NewRegistry() })
	return defaultRegistry
}

// Register parses the TrueType file at path and binds it to family and weight.
func (r *Registry) Register(family string, weight Weight, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	return r.RegisterTTF(family, weight, data)
}

// RegisterTTF parses TrueType data and binds it to family and weight.
func (r *Registry) RegisterTTF(family string, weight Weight, data []byte) error {
	f, err := truetype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %q: %w", family, err)
	}
	key := normalizeFamily(family)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.registered[key] == nil {
		r.registered[key] = make(map[Weight]*truetype.Font)
	}
	r.registered[key][weight.Normalize()] = f
	// Registration can change earlier answers for this family.
	for k := range r.resolved {
		if strings.HasPrefix(k, key+"|") {
			delete(r.resolved, k)
		}
	}
	return nil
}

// Font resolves family and weight to a parsed font and reports its source.
func (r *Registry) Font(family string, weight Weight) (*truetype.Font, Source) {
	weight = weight.Normalize()
	key := normalizeFamily(family) + "|" + weight.String()

	r.mu.RLock()
	res, ok := r.resolved[key]
	r.mu.RUnlock()
	if ok {
		return res.font, res.source
	}

	res = r.lookup(family, weight)

	r.mu.Lock()
	r.resolved[key] = res
	r.mu.Unlock()

	r.logger.Debug("resolved font", "family", family, "weight", weight, "source", res.source, "path", res.path)
	return res.font, res.source
}

// Face returns a face for family at the given CSS weight and pixel size.
func (r *Registry) Face(family, weight string, sizePx float64) font.Face {
	f, _ := r.Font(family, ParseWeight(weight))
	return truetype.NewFace(f, &truetype.Options{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

func (r *Registry) lookup(family string, weight Weight) resolved {
	key := normalizeFamily(family)

	r.mu.RLock()
	if ws, ok := r.registered[key]; ok {
		if f, ok := ws[weight]; ok {
			r.mu.RUnlock()
			return resolved{font: f, source: SourceRegistered}
		}
		if f := nearestWeight(ws, weight); f != nil {
			r.mu.RUnlock()
			return resolved{font: f, source: SourceRegistered}
		}
	}
	r.mu.RUnlock()

	if !isGeneric(key) {
		names := candidateFiles(family, weight)
		for _, dir := range r.dirs {
			if path := findInDir(dir, names); path != "" {
				if f := r.parsePath(path); f != nil {
					return resolved{font: f, source: SourceDir, path: path}
				}
			}
		}
		if r.system {
			for _, name := range names {
				path, err := findfont.Find(name)
				if err != nil || !strings.EqualFold(filepath.Ext(path), ".ttf") {
					continue
				}
				if f := r.parsePath(path); f != nil {
					return resolved{font: f, source: SourceSystem, path: path}
				}
			}
		}
	}

	return resolved{font: fallback(key, weight), source: SourceFallback}
}

func (r *Registry) parsePath(path string) *truetype.Font {
	r.mu.RLock()
	f, ok := r.byPath[path]
	r.mu.RUnlock()
	if ok {
		return f
	}

	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Debug("font unreadable", "path", path, "error", err)
		return nil
	}
	f, err = truetype.Parse(data)
	if err != nil {
		r.logger.Debug("font unparseable", "path", path, "error", err)
		return nil
	}

	r.mu.Lock()
	r.byPath[path] = f
	r.mu.Unlock()
	return f
}

func nearestWeight(ws map[Weight]*truetype.Font, want Weight) *truetype.Font {
	var best *truetype.Font
	bestDist := -1
	for w, f := range ws {
		d := int(w) - int(want)
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist || (d == bestDist && w < want) {
			best, bestDist = f, d
		}
	}
	return best
}

func findInDir(dir string, names []string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, name := range names {
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(e.Name(), name) {
				return filepath.Join(dir, e.Name())
			}
		}
	}
	return ""
}

// candidateFiles lists file names a family is commonly shipped under,
// most specific first.
func candidateFiles(family string, weight Weight) []string {
	compact := strings.ReplaceAll(strings.TrimSpace(family), " ", "")
	spaced := strings.TrimSpace(family)
	style := weight.StyleName()

	names := []string{
		compact + "-" + style + ".ttf",
		spaced + " " + style + ".ttf",
		compact + style + ".ttf",
	}
	if weight == Regular {
		names = append(names, compact+".ttf", spaced+".ttf")
	}
	return names
}

var folder = cases.Fold()

func normalizeFamily(family string) string {
	family = strings.Trim(strings.TrimSpace(family), `"'`)
	return folder.String(strings.Join(strings.Fields(family), " "))
}

func isGeneric(key string) bool {
	switch key {
	case "", "sans-serif", "serif", "monospace", "system-ui", "cursive", "fantasy", "ai-choice":
		return true
	}
	return false
}

var (
	fallbackOnce  sync.Once
	fallbackFonts map[string]*truetype.Font
)

func fallback(key string, weight Weight) *truetype.Font {
	fallbackOnce.Do(func() {
		fallbackFonts = map[string]*truetype.Font{
			"regular":   mustParse(goregular.TTF),
			"medium":    mustParse(gomedium.TTF),
			"bold":      mustParse(gobold.TTF),
			"mono":      mustParse(gomono.TTF),
			"mono-bold": mustParse(gomonobold.TTF),
		}
	})

	mono := key == "monospace" || strings.Contains(key, "mono") || strings.Contains(key, "courier")
	switch {
	case mono && weight >= SemiBold:
		return fallbackFonts["mono-bold"]
	case mono:
		return fallbackFonts["mono"]
	case weight >= SemiBold:
		return fallbackFonts["bold"]
	case weight == Medium:
		return fallbackFonts["medium"]
	default:
		return fallbackFonts["regular"]
	}
}

func mustParse(ttf []byte) *truetype.Font {
	f, err := truetype.Parse(ttf)
	if err != nil {
		panic(fmt.Sprintf("fonts: embedded font: %v", err))
	}
	return f
}
