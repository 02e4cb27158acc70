package gemini

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/genai"
)

// RetryDelay is the wait before the first retry. It doubles after each
// failed attempt.
const RetryDelay = time.Second

// retrying retries model calls that failed with a transient API error
// (rate limiting or a server-side failure). Other errors return at once.
type retrying struct {
	inner    models
	attempts int
	delay    time.Duration
	logger   *log.Logger
}

func (r *retrying) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	err := r.do(ctx, model, func() (err error) {
		resp, err = r.inner.GenerateContent(ctx, model, contents, config)
		return err
	})
	return resp, err
}

func (r *retrying) GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	var resp *genai.GenerateImagesResponse
	err := r.do(ctx, model, func() (err error) {
		resp, err = r.inner.GenerateImages(ctx, model, prompt, config)
		return err
	})
	return resp, err
}

func (r *retrying) do(ctx context.Context, model string, fn func() error) error {
	attempts := max(r.attempts, 1)
	delay := r.delay
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isTransient(err) {
			return err
		}

		if i < attempts-1 {
			r.logger.Debug("retrying model call", "model", model, "attempt", i+2, "delay", delay, "err", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

func isTransient(err error) bool {
	var code int
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	default:
		return false
	}
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
