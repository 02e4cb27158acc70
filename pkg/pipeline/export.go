package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/designstudio/pkg/cache"
	errs "github.com/matzehuels/designstudio/pkg/errors"
	"github.com/matzehuels/designstudio/pkg/export"
	"github.com/matzehuels/designstudio/pkg/layout"
	"github.com/matzehuels/designstudio/pkg/observability"
)

// Export composes and encodes a design, serving repeated requests from the
// artifact cache. A failed print upscale is not fatal: the export continues
// from the original background and the failure is added to Result.Warnings.
// Such a degraded artifact is not cached, so the next request retries the
// upscale.
func (r *Runner) Export(ctx context.Context, opts ExportOptions) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()
	result := &Result{}

	docHash, err := documentHash(opts.Document)
	if err != nil {
		return nil, err
	}
	inputHash := cache.HashParts(opts.Background, opts.Foreground, docHash)
	key := r.Keyer.ArtifactKey(inputHash, opts.ArtifactKeyOpts())

	data, hit, err := r.cached(ctx, "artifact", key, cache.TTLArtifact, opts.Refresh, func() ([]byte, bool, error) {
		bg := opts.Background
		if opts.PrintDPI > 0 {
			var up []byte
			var upHit bool
			uerr := r.stage(ctx, &result.Stats, observability.StageUpscale, func() error {
				var err error
				up, upHit, err = r.upscaleForPrint(ctx, bg, opts.PrintDPI, opts.Refresh)
				return err
			})
			if uerr != nil {
				r.Logger.Warn("print upscale failed, exporting at original resolution", "dpi", opts.PrintDPI, "err", uerr)
				result.Warnings = append(result.Warnings, "print optimization skipped: "+uerr.Error())
			} else {
				bg = up
				result.CacheInfo.UpscaleHit = upHit
			}
		}

		var art *export.Artifact
		err := r.stage(ctx, &result.Stats, observability.StageExport, func() error {
			var err error
			art, err = r.Exporter.Export(ctx, export.Request{
				Background:  bg,
				Foreground:  opts.Foreground,
				Document:    opts.Document,
				Width:       opts.Width,
				Height:      opts.Height,
				LockAspect:  opts.LockAspect,
				Format:      opts.Format,
				Quality:     opts.Quality,
				ProductName: opts.ProductName,
			})
			return err
		})
		if err != nil {
			return nil, false, err
		}
		return art.Data, len(result.Warnings) == 0, nil
	})
	if err != nil {
		return nil, err
	}

	art, err := export.Describe(data, opts.ProductName, opts.Format)
	if err != nil {
		return nil, err
	}
	result.Artifact = art
	result.CacheInfo.ArtifactHit = hit
	result.Stats.Total = time.Since(start)

	r.Logger.Info("exported design",
		"file", art.Filename,
		"width", art.Width, "height", art.Height,
		"cached", hit,
		"duration", result.Stats.Total)
	return result, nil
}

func documentHash(doc *layout.Document) ([]byte, error) {
	if doc == nil {
		return nil, nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidLayout, err, "encode layout document")
	}
	return data, nil
}
