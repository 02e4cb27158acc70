package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/designstudio/pkg/observability"
	"github.com/matzehuels/designstudio/pkg/outpaint"
	"github.com/matzehuels/designstudio/pkg/usage"
)

// Generate creates an image from a prompt. With Enhance set the prompt is
// rewritten first; an enhancement failure falls back to the raw prompt.
func (r *Runner) Generate(ctx context.Context, opts GenerateOptions) (*ImageResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	client, err := r.client()
	if err != nil {
		return nil, err
	}
	if err := r.allow(ctx, usage.FeatureGenerate); err != nil {
		return nil, err
	}
	start := time.Now()
	res := &ImageResult{Prompt: opts.Prompt, Ratio: opts.Ratio}

	if opts.Enhance {
		_ = r.stage(ctx, &res.Stats, observability.StageEnhance, func() error {
			enhanced, err := client.EnhancePrompt(ctx, opts.Prompt, opts.Framing)
			if err != nil {
				r.Logger.Warn("prompt enhancement failed, using the original prompt", "err", err)
				return err
			}
			if enhanced != "" {
				res.Prompt = enhanced
			}
			return nil
		})
	}

	err = r.stage(ctx, &res.Stats, observability.StageGenerate, func() error {
		var err error
		res.Image, err = client.GenerateImage(ctx, res.Prompt, opts.Ratio)
		return err
	})
	if err != nil {
		return nil, err
	}

	res.Usage = r.consume(ctx, usage.FeatureGenerate)
	res.Stats.Total = time.Since(start)
	r.Logger.Info("generated image", "ratio", opts.Ratio, "bytes", len(res.Image), "duration", res.Stats.Total)
	return res, nil
}

// Edit applies an instruction to an existing image.
func (r *Runner) Edit(ctx context.Context, opts EditOptions) (*ImageResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	client, err := r.client()
	if err != nil {
		return nil, err
	}
	if err := r.allow(ctx, usage.FeatureEdit); err != nil {
		return nil, err
	}
	start := time.Now()
	res := &ImageResult{Prompt: opts.Prompt}

	err = r.stage(ctx, &res.Stats, observability.StageEdit, func() error {
		var err error
		res.Image, err = client.EditImage(ctx, opts.Prompt, opts.Image, opts.MIMEType)
		return err
	})
	if err != nil {
		return nil, err
	}

	res.Usage = r.consume(ctx, usage.FeatureEdit)
	res.Stats.Total = time.Since(start)
	r.Logger.Info("edited image", "bytes", len(res.Image), "duration", res.Stats.Total)
	return res, nil
}

// Reformat extends an image to a new aspect ratio. The source is padded with
// the outpaint marker and the edit model fills the padding. With PrintDPI
// set the result is also upscaled; a failed upscale keeps the model output
// and adds a warning.
func (r *Runner) Reformat(ctx context.Context, opts ReformatOptions) (*ImageResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	client, err := r.client()
	if err != nil {
		return nil, err
	}
	if err := r.allow(ctx, usage.FeatureReformat); err != nil {
		return nil, err
	}
	start := time.Now()
	res := &ImageResult{Ratio: opts.Target}

	var padded *outpaint.Result
	err = r.stage(ctx, &res.Stats, observability.StageOutpaint, func() error {
		var err error
		padded, err = outpaint.PrepareBytes(opts.Image, opts.Target)
		return err
	})
	if err != nil {
		return nil, err
	}
	if n := padded.MarkerCollisions; n > 0 {
		r.Logger.Warn("source already contains the outpaint marker color", "pixels", n)
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("%d source pixels already use the marker color %s and may be repainted", n, outpaint.MarkerHex))
	}

	res.Prompt = outpaint.Prompt(opts.Target, opts.PrintDPI)
	err = r.stage(ctx, &res.Stats, observability.StageEdit, func() error {
		var err error
		res.Image, err = client.EditImage(ctx, res.Prompt, padded.PNG, padded.MIMEType())
		return err
	})
	if err != nil {
		return nil, err
	}

	if opts.PrintDPI > 0 {
		uerr := r.stage(ctx, &res.Stats, observability.StageUpscale, func() error {
			up, _, err := r.upscaleForPrint(ctx, res.Image, opts.PrintDPI, false)
			if err != nil {
				return err
			}
			res.Image = up
			return nil
		})
		if uerr != nil {
			r.Logger.Warn("print upscale failed, keeping the reformatted image", "dpi", opts.PrintDPI, "err", uerr)
			res.Warnings = append(res.Warnings, "print optimization skipped: "+uerr.Error())
		}
	}

	res.Usage = r.consume(ctx, usage.FeatureReformat)
	res.Stats.Total = time.Since(start)
	r.Logger.Info("reformatted image", "target", opts.Target, "bytes", len(res.Image), "duration", res.Stats.Total)
	return res, nil
}
