// Package gemini implements the ai collaborators on the Gemini API.
//
// Image generation runs on Imagen through Models.GenerateImages. Edits and
// outpainting use an image-capable Gemini model with the source attached as
// inline data. The art-direction calls (brief, clarify, refine) ask a Gemini
// model for JSON constrained by a response schema and decode it into
// layout documents.
//
// Calls are not retried unless Config.Retries is set, in which case
// rate-limited and server-side failures are retried with exponential backoff.
// Errors are typed: GENERATION_FAILED, EDIT_FAILED or BRIEF_FAILED, with the
// SDK error kept as the cause. Prompt enhancement never fails; it falls back
// to the caller's prompt.
package gemini

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/genai"

	"github.com/matzehuels/designstudio/pkg/ai"
	"github.com/matzehuels/designstudio/pkg/buildinfo"
	errs "github.com/matzehuels/designstudio/pkg/errors"
	"github.com/matzehuels/designstudio/pkg/observability"
)

// ===========================================================================
// Default Values
// ===========================================================================

const (
	DefaultImageModel   = "imagen-4.0-generate-001"
	DefaultEditModel    = "gemini-2.5-flash-image"
	DefaultBriefModel   = "gemini-2.5-pro"
	DefaultEnhanceModel = "gemini-2.5-flash"

	// EnhanceTemperature keeps enhanced prompts varied between calls.
	EnhanceTemperature = 0.9
)

// Config selects models and credentials. Empty model names use the defaults.
type Config struct {
	APIKey       string
	ImageModel   string
	EditModel    string
	BriefModel   string
	EnhanceModel string

	// Retries is how many extra attempts a transient failure gets. Zero
	// surfaces the first error.
	Retries int
}

func (c *Config) setDefaults() {
	if c.ImageModel == "" {
		c.ImageModel = DefaultImageModel
	}
	if c.EditModel == "" {
		c.EditModel = DefaultEditModel
	}
	if c.BriefModel == "" {
		c.BriefModel = DefaultBriefModel
	}
	if c.EnhanceModel == "" {
		c.EnhanceModel = DefaultEnhanceModel
	}
}

// models is the part of genai.Models the client calls.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Client implements [ai.Client].
type Client struct {
	models models
	cfg    Config
	logger *log.Logger
}

var _ ai.Client = (*Client)(nil)

// New connects to the Gemini API. An empty APIKey lets the SDK read
// GEMINI_API_KEY or GOOGLE_API_KEY from the environment.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			Headers: http.Header{"User-Agent": []string{buildinfo.UserAgent()}},
		},
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "create gemini client")
	}
	return newClient(gc.Models, cfg, logger), nil
}

func newClient(m models, cfg Config, logger *log.Logger) *Client {
	cfg.setDefaults()
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.Retries > 0 {
		m = &retrying{inner: m, attempts: cfg.Retries + 1, delay: RetryDelay, logger: logger}
	}
	return &Client{models: m, cfg: cfg, logger: logger}
}

// observe reports a model call to the AI hooks. Call the returned func with
// the call's error.
func observe(ctx context.Context, op, model string) func(error) {
	start := time.Now()
	observability.AI().OnRequest(ctx, op, model)
	return func(err error) {
		observability.AI().OnResponse(ctx, op, model, time.Since(start), err)
	}
}
