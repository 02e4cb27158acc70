// Package templates saves layout briefs together with the settings they were
// designed for, so a finished design can be reopened and re-exported later.
package templates

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/designstudio/pkg/ai"
	errs "github.com/matzehuels/designstudio/pkg/errors"
	"github.com/matzehuels/designstudio/pkg/geometry"
	"github.com/matzehuels/designstudio/pkg/layout"
	"github.com/matzehuels/designstudio/pkg/store"
)

// KeyPrefix prefixes every template key in the store.
const KeyPrefix = "template:"

// Settings are the canvas and style choices a brief was generated with.
type Settings struct {
	AspectRatio        geometry.AspectRatio `json:"aspectRatio"`
	IsCustomSize       bool                 `json:"isCustomSize"`
	CustomWidth        string               `json:"customWidth,omitempty"`
	CustomHeight       string               `json:"customHeight,omitempty"`
	CustomUnit         geometry.Unit        `json:"customUnit,omitempty"`
	OptimizationTarget ai.Target            `json:"optimizationTarget"`
	PrintQuality       int                  `json:"printQuality,omitempty"`
	FontFamily         string               `json:"fontFamily,omitempty"`
}

// Validate checks the settings and fills in defaults.
func (s *Settings) Validate() error {
	if s.OptimizationTarget == "" {
		s.OptimizationTarget = ai.TargetSocial
	}
	switch s.OptimizationTarget {
	case ai.TargetSocial, ai.TargetPrint:
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown optimization target %q (want social or print)", s.OptimizationTarget)
	}
	if s.OptimizationTarget == ai.TargetPrint {
		if s.PrintQuality == 0 {
			s.PrintQuality = 300
		}
		if s.PrintQuality != 300 && s.PrintQuality != 600 {
			return errs.New(errs.ErrCodeInvalidInput, "print quality must be 300 or 600 DPI, got %d", s.PrintQuality)
		}
	}
	if s.IsCustomSize {
		_, err := s.CanvasSize(0)
		return err
	}
	if s.AspectRatio == "" {
		s.AspectRatio = geometry.Square
	}
	_, err := geometry.RatioToNumber(s.AspectRatio)
	return err
}

// CanvasSize resolves the settings to pixels. reference is the long edge used
// for ratio-based settings.
func (s Settings) CanvasSize(reference int) (geometry.Size, error) {
	if !s.IsCustomSize {
		return geometry.ResolveCanvasSize(geometry.CanvasSpec{Ratio: s.AspectRatio, ReferenceDimension: reference})
	}
	w, err := parseDimension(s.CustomWidth)
	if err != nil {
		return geometry.Size{}, err
	}
	h, err := parseDimension(s.CustomHeight)
	if err != nil {
		return geometry.Size{}, err
	}
	unit, err := geometry.ParseUnit(string(s.CustomUnit))
	if err != nil {
		return geometry.Size{}, err
	}
	return geometry.ResolveCanvasSize(geometry.CanvasSpec{CustomWidth: w, CustomHeight: h, Unit: unit})
}

// Constraints converts the settings into brief constraints.
func (s Settings) Constraints() (ai.Constraints, error) {
	c := ai.Constraints{
		AspectRatio: s.AspectRatio,
		Target:      s.OptimizationTarget,
		FontFamily:  s.FontFamily,
	}
	if c.Target == ai.TargetPrint {
		c.PrintDPI = s.PrintQuality
	}
	if s.IsCustomSize {
		w, err := parseDimension(s.CustomWidth)
		if err != nil {
			return ai.Constraints{}, err
		}
		h, err := parseDimension(s.CustomHeight)
		if err != nil {
			return ai.Constraints{}, err
		}
		unit, err := geometry.ParseUnit(string(s.CustomUnit))
		if err != nil {
			return ai.Constraints{}, err
		}
		c.CustomSize = &ai.CustomSize{Width: w, Height: h, Unit: unit}
	}
	return c, nil
}

// parseDimension accepts a decimal comma, as typed in pt-BR locales.
func parseDimension(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil || !(v > 0) {
		return 0, errs.New(errs.ErrCodeInvalidInput, "invalid custom dimension %q", s)
	}
	return v, nil
}

// Template is a saved brief.
type Template struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Brief     *layout.Document `json:"brief"`
	Settings  Settings         `json:"settings"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Repository stores templates in a [store.Store].
type Repository struct {
	store  store.Store
	logger *log.Logger
	now    func() time.Time
}

// NewRepository creates a repository. A nil logger discards output.
func NewRepository(s store.Store, logger *log.Logger) *Repository {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Repository{store: s, logger: logger, now: time.Now}
}

// Save stores a copy of doc under a new id.
func (r *Repository) Save(ctx context.Context, name string, doc *layout.Document, settings Settings) (*Template, error) {
	name = strings.TrimSpace(name)
	if err := errs.ValidateTemplateName(name); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "template %q has no brief", name)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	t := &Template{
		ID:        uuid.NewString(),
		Name:      name,
		Brief:     doc.Clone(),
		Settings:  settings,
		CreatedAt: r.now().UTC(),
	}
	if err := store.SetJSON(ctx, r.store, KeyPrefix+t.ID, t); err != nil {
		return nil, fmt.Errorf("save template: %w", err)
	}
	r.logger.Debug("saved template", "id", t.ID, "name", t.Name)
	return t, nil
}

// Get loads a template by id. A missing id is NOT_FOUND.
func (r *Repository) Get(ctx context.Context, id string) (*Template, error) {
	var t Template
	ok, err := store.GetJSON(ctx, r.store, KeyPrefix+id, &t)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "template %q not found", id)
	}
	return &t, nil
}

// List returns every template, newest first. Entries that fail to decode
// are skipped with a warning.
func (r *Repository) List(ctx context.Context) ([]*Template, error) {
	keys, err := r.store.List(ctx, KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	out := make([]*Template, 0, len(keys))
	for _, key := range keys {
		var t Template
		ok, err := store.GetJSON(ctx, r.store, key, &t)
		if err != nil {
			r.logger.Warn("skipping unreadable template", "key", key, "err", err)
			continue
		}
		if ok {
			out = append(out, &t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Find returns the template whose id or name matches ref. An id prefix of at
// least 8 characters also matches if it is unambiguous.
func (r *Repository) Find(ctx context.Context, ref string) (*Template, error) {
	if t, err := r.Get(ctx, ref); err == nil {
		return t, nil
	} else if !errs.Is(err, errs.ErrCodeNotFound) {
		return nil, err
	}
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var match []*Template
	for _, t := range all {
		if t.Name == ref || (len(ref) >= 8 && strings.HasPrefix(t.ID, ref)) {
			match = append(match, t)
		}
	}
	switch len(match) {
	case 0:
		return nil, errs.New(errs.ErrCodeNotFound, "template %q not found", ref)
	case 1:
		return match[0], nil
	default:
		return nil, errs.New(errs.ErrCodeInvalidInput, "%q matches %d templates, use the id", ref, len(match))
	}
}

// Delete removes a template. A missing id is NOT_FOUND.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, ok, err := r.store.Get(ctx, KeyPrefix+id); err != nil {
		return fmt.Errorf("load template: %w", err)
	} else if !ok {
		return errs.New(errs.ErrCodeNotFound, "template %q not found", id)
	}
	if err := r.store.Delete(ctx, KeyPrefix+id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}
