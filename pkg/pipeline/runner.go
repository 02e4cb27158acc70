package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/designstudio/pkg/ai"
	"github.com/matzehuels/designstudio/pkg/cache"
	errs "github.com/matzehuels/designstudio/pkg/errors"
	"github.com/matzehuels/designstudio/pkg/export"
	"github.com/matzehuels/designstudio/pkg/geometry"
	"github.com/matzehuels/designstudio/pkg/observability"
	"github.com/matzehuels/designstudio/pkg/upscale"
	"github.com/matzehuels/designstudio/pkg/usage"
)

// Runner executes studio operations with caching and quota accounting.
//
// The Runner holds no per-operation state. Multiple goroutines can safely
// share one Runner with different options.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	AI       ai.Client
	Usage    *usage.Tracker
	Exporter *export.Exporter
}

// Option configures a Runner.
type Option func(*Runner)

// WithAI sets the generative collaborators. Without one, every operation
// except Export fails with UNSUPPORTED.
func WithAI(c ai.Client) Option {
	return func(r *Runner) { r.AI = c }
}

// WithUsage enables daily allowance checks.
func WithUsage(t *usage.Tracker) Option {
	return func(r *Runner) { r.Usage = t }
}

// WithExporter replaces the default exporter.
func WithExporter(e *export.Exporter) Option {
	return func(r *Runner) { r.Exporter = e }
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger, opts ...Option) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Exporter == nil {
		r.Exporter = export.NewExporter(nil, logger)
	}
	return r
}

// Close releases the cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// stage runs fn as one instrumented pipeline stage.
func (r *Runner) stage(ctx context.Context, stats *Stats, s observability.Stage, fn func() error) error {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, s)
	start := time.Now()
	err := fn()
	d := time.Since(start)
	hooks.OnStageComplete(ctx, s, d, err)
	stats.record(s, d)
	return err
}

func (r *Runner) client() (ai.Client, error) {
	if r.AI == nil {
		return nil, errs.New(errs.ErrCodeUnsupported, "no AI client configured")
	}
	return r.AI, nil
}

// allow checks the allowance for f. Without a tracker everything is allowed.
func (r *Runner) allow(ctx context.Context, f usage.Feature) error {
	if r.Usage == nil {
		return nil
	}
	return r.Usage.Allow(ctx, f)
}

// consume records one successful use of f. A failure to persist the count
// is logged and does not fail the operation.
func (r *Runner) consume(ctx context.Context, f usage.Feature) *usage.State {
	if r.Usage == nil {
		return nil
	}
	st, err := r.Usage.Consume(ctx, f)
	if err != nil {
		r.Logger.Warn("could not record usage", "feature", f, "err", err)
		return nil
	}
	return st
}

// cached looks key up, or computes and stores the value. The hit flag
// reports whether the cache served the value. A computed value is stored
// only when compute reports it as cacheable.
func (r *Runner) cached(ctx context.Context, kind, key string, ttl time.Duration, refresh bool, compute func() ([]byte, bool, error)) ([]byte, bool, error) {
	hooks := observability.Cache()
	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			hooks.OnCacheHit(ctx, kind)
			r.Logger.Debug("cache hit", "type", kind)
			return data, true, nil
		} else if err != nil {
			r.Logger.Debug("cache read failed", "type", kind, "err", err)
		}
		hooks.OnCacheMiss(ctx, kind)
	}

	data, cacheable, err := compute()
	if err != nil {
		return nil, false, err
	}
	if !cacheable {
		r.Logger.Debug("result not cached", "type", kind)
		return data, false, nil
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "type", kind, "err", err)
	} else {
		hooks.OnCacheSet(ctx, kind, len(data))
	}
	return data, false, nil
}

// upscaleForPrint enlarges img by the factor for dpi, reusing cached results.
func (r *Runner) upscaleForPrint(ctx context.Context, img []byte, dpi int, refresh bool) ([]byte, bool, error) {
	factor := geometry.ScaleForDPI(dpi)
	if factor <= 1 {
		return img, false, nil
	}
	key := r.Keyer.UpscaleKey(cache.Hash(img), factor)
	return r.cached(ctx, "upscale", key, cache.TTLUpscale, refresh, func() ([]byte, bool, error) {
		data, err := upscale.UpscaleBytes(img, factor)
		return data, true, err
	})
}
