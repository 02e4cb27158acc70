package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/designstudio/pkg/ai"
	errs "github.com/matzehuels/designstudio/pkg/errors"
	"github.com/matzehuels/designstudio/pkg/layout"
	"github.com/matzehuels/designstudio/pkg/observability"
	"github.com/matzehuels/designstudio/pkg/usage"
)

// Clarify asks the brief model for follow-up questions. An empty result
// means the brief can go straight to Design.
func (r *Runner) Clarify(ctx context.Context, brief string) ([]ai.Question, error) {
	brief = strings.TrimSpace(brief)
	if brief == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "a brief is required")
	}
	client, err := r.client()
	if err != nil {
		return nil, err
	}
	var stats Stats
	var qs []ai.Question
	err = r.stage(ctx, &stats, observability.StageClarify, func() error {
		var err error
		qs, err = client.ClarifyBrief(ctx, brief)
		return err
	})
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("clarified brief", "questions", len(qs))
	return qs, nil
}

// Design turns a brief into a layout document and, unless SkipBackground is
// set, generates the background from the document's image prompt.
func (r *Runner) Design(ctx context.Context, opts DesignOptions) (*DesignResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	client, err := r.client()
	if err != nil {
		return nil, err
	}
	if err := r.allow(ctx, usage.FeatureDesigner); err != nil {
		return nil, err
	}
	start := time.Now()
	res := &DesignResult{}

	brief := ai.CombineBrief(opts.Brief, opts.Answers)
	err = r.stage(ctx, &res.Stats, observability.StageBrief, func() error {
		var err error
		res.Document, err = client.GenerateLayoutBrief(ctx, brief, opts.Constraints)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !opts.SkipBackground {
		prompt := strings.TrimSpace(res.Document.ImagePrompt)
		if prompt == "" {
			return nil, errs.New(errs.ErrCodeBrief, "layout brief has no image prompt")
		}
		ratio := opts.BackgroundRatio()
		err = r.stage(ctx, &res.Stats, observability.StageGenerate, func() error {
			var err error
			res.Background, err = client.GenerateImage(ctx, prompt, ratio)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	res.Usage = r.consume(ctx, usage.FeatureDesigner)
	res.Stats.Total = time.Since(start)
	r.Logger.Info("designed layout",
		"elements", len(res.Document.Layout),
		"background", len(res.Background) > 0,
		"duration", res.Stats.Total)
	return res, nil
}

// Refine applies a change request to doc and returns a new document.
// doc is left untouched. Refinement does not consume an allowance.
func (r *Runner) Refine(ctx context.Context, doc *layout.Document, request string) (*DesignResult, error) {
	if doc == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "a document to refine is required")
	}
	request = strings.TrimSpace(request)
	if request == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "a refinement request is required")
	}
	client, err := r.client()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	res := &DesignResult{}

	err = r.stage(ctx, &res.Stats, observability.StageRefine, func() error {
		var err error
		res.Document, err = client.RefineBrief(ctx, doc.Clone(), request)
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Stats.Total = time.Since(start)
	r.Logger.Info("refined layout", "elements", len(res.Document.Layout), "duration", res.Stats.Total)
	return res, nil
}
