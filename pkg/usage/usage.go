// Package usage tracks daily quotas per plan.
//
// Each feature (generate, edit, reformat, designer) has a daily allowance
// that depends on the plan. Allowances refill at the first local midnight
// after the last reset. The pro plan is unlimited.
//
// State lives in a [store.Store] under a fixed key, so the CLI keeps counts
// between invocations and a shared Redis or Mongo store shares them between
// machines.
package usage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	errs "github.com/matzehuels/designstudio/pkg/errors"
	"github.com/matzehuels/designstudio/pkg/store"
)

// DefaultKey is the store key of the usage state.
const DefaultKey = "usage:default"

// Unlimited marks a feature without a daily cap.
const Unlimited = -1

// Plan is a subscription tier.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanCreator Plan = "creator"
	PlanPro     Plan = "pro"
)

// Plans lists the tiers from smallest to largest.
var Plans = []Plan{PlanFree, PlanCreator, PlanPro}

// ParsePlan validates a plan name.
func ParsePlan(s string) (Plan, error) {
	p := Plan(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Plans {
		if p == known {
			return p, nil
		}
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "unknown plan %q (want free, creator or pro)", s)
}

// Feature is a metered operation.
type Feature string

const (
	FeatureGenerate Feature = "generate"
	FeatureEdit     Feature = "edit"
	FeatureReformat Feature = "reformat"
	FeatureDesigner Feature = "designer"
)

// Features lists every metered feature.
var Features = []Feature{FeatureGenerate, FeatureEdit, FeatureReformat, FeatureDesigner}

// Counts holds one number per feature.
type Counts struct {
	Generate int `json:"generate"`
	Edit     int `json:"edit"`
	Reformat int `json:"reformat"`
	Designer int `json:"designer"`
}

// Get returns the count for f.
func (c Counts) Get(f Feature) int {
	switch f {
	case FeatureGenerate:
		return c.Generate
	case FeatureEdit:
		return c.Edit
	case FeatureReformat:
		return c.Reformat
	case FeatureDesigner:
		return c.Designer
	}
	return 0
}

func (c *Counts) set(f Feature, n int) {
	switch f {
	case FeatureGenerate:
		c.Generate = n
	case FeatureEdit:
		c.Edit = n
	case FeatureReformat:
		c.Reformat = n
	case FeatureDesigner:
		c.Designer = n
	}
}

// Limits returns the daily allowance of a plan.
func Limits(p Plan) Counts {
	switch p {
	case PlanCreator:
		return Counts{Generate: 100, Edit: 100, Reformat: 100, Designer: 100}
	case PlanPro:
		return Counts{Generate: Unlimited, Edit: Unlimited, Reformat: Unlimited, Designer: Unlimited}
	default:
		return Counts{Generate: 3, Edit: 3, Reformat: 2, Designer: 1}
	}
}

// State is the persisted usage record.
type State struct {
	Plan      Plan      `json:"plan"`
	Remaining Counts    `json:"usage"`
	LastReset time.Time `json:"lastReset"`
}

// NextReset is the first local midnight after LastReset.
func (s *State) NextReset() time.Time {
	t := s.LastReset
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
}

// Allows reports whether f has allowance left.
func (s *State) Allows(f Feature) bool {
	n := s.Remaining.Get(f)
	return n == Unlimited || n > 0
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now. The clock's location decides where midnight is.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithKey stores the state under key instead of DefaultKey.
func WithKey(key string) Option {
	return func(t *Tracker) { t.key = key }
}

// Tracker reads and updates usage state. Methods are serialized per Tracker.
type Tracker struct {
	store store.Store
	key   string
	now   func() time.Time
	mu    sync.Mutex
}

// NewTracker creates a tracker backed by s.
func NewTracker(s store.Store, opts ...Option) *Tracker {
	t := &Tracker{store: s, key: DefaultKey, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Status returns the current state, applying the daily reset if due.
func (t *Tracker) Status(ctx context.Context) (*State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load(ctx)
}

// Allow returns a QUOTA_EXCEEDED error if f has no allowance left.
func (t *Tracker) Allow(ctx context.Context, f Feature) error {
	st, err := t.Status(ctx)
	if err != nil {
		return err
	}
	if !st.Allows(f) {
		return errs.New(errs.ErrCodeQuotaExceeded,
			"daily %s limit reached on the %s plan (resets %s)", f, st.Plan, st.NextReset().Format("Jan 2 15:04"))
	}
	return nil
}

// Consume uses one unit of f. Counts never drop below zero and the pro
// plan is never decremented.
func (t *Tracker) Consume(ctx context.Context, f Feature) (*State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, err := t.load(ctx)
	if err != nil {
		return nil, err
	}
	if st.Plan == PlanPro {
		return st, nil
	}
	if n := st.Remaining.Get(f); n > 0 {
		st.Remaining.set(f, n-1)
		if err := t.save(ctx, st); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// SetPlan switches plans and refills every allowance.
func (t *Tracker) SetPlan(ctx context.Context, p Plan) (*State, error) {
	if _, err := ParsePlan(string(p)); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	st := &State{Plan: p, Remaining: Limits(p), LastReset: t.now()}
	if err := t.save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (t *Tracker) load(ctx context.Context) (*State, error) {
	var st State
	ok, err := store.GetJSON(ctx, t.store, t.key, &st)
	if err != nil {
		return nil, fmt.Errorf("load usage: %w", err)
	}
	now := t.now()
	if !ok {
		st = State{Plan: PlanFree, Remaining: Limits(PlanFree), LastReset: now}
		return &st, t.save(ctx, &st)
	}
	if _, err := ParsePlan(string(st.Plan)); err != nil {
		st.Plan = PlanFree
	}
	st.LastReset = st.LastReset.In(now.Location())
	if !now.Before(st.NextReset()) {
		st.Remaining = Limits(st.Plan)
		st.LastReset = now
		if err := t.save(ctx, &st); err != nil {
			return nil, err
		}
	}
	return &st, nil
}

func (t *Tracker) save(ctx context.Context, st *State) error {
	if err := store.SetJSON(ctx, t.store, t.key, st); err != nil {
		return fmt.Errorf("save usage: %w", err)
	}
	return nil
}
