package gemini

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func newRetrying(fm *fakeModels, attempts int) *retrying {
	return &retrying{inner: fm, attempts: attempts, delay: time.Millisecond, logger: log.New(io.Discard)}
}

func TestRetryTransient(t *testing.T) {
	calls := 0
	fm := &fakeModels{content: func(string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		calls++
		if calls < 3 {
			return nil, genai.APIError{Code: 503, Message: "overloaded"}
		}
		return textResponse("ok"), nil
	}}

	resp, err := newRetrying(fm, 3).GenerateContent(context.Background(), "m", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text())
	assert.Equal(t, 3, calls)
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0
	fm := &fakeModels{images: func(string, string, *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
		calls++
		return nil, genai.APIError{Code: 429, Message: "quota"}
	}}

	_, err := newRetrying(fm, 2).GenerateImages(context.Background(), "m", "p", nil)
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryPermanentError(t *testing.T) {
	calls := 0
	fm := &fakeModels{content: func(string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		calls++
		return nil, genai.APIError{Code: 400, Message: "bad request"}
	}}

	_, err := newRetrying(fm, 3).GenerateContent(context.Background(), "m", nil, nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fm := &fakeModels{content: func(string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		cancel()
		return nil, genai.APIError{Code: 500}
	}}

	r := newRetrying(fm, 3)
	r.delay = time.Hour
	_, err := r.GenerateContent(ctx, "m", nil, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(genai.APIError{Code: 429}))
	assert.True(t, isTransient(&genai.APIError{Code: 500}))
	assert.False(t, isTransient(genai.APIError{Code: 404}))
	assert.False(t, isTransient(errors.New("network down")))
}

func TestClientRetriesOnlyWhenConfigured(t *testing.T) {
	calls := 0
	fm := &fakeModels{images: func(string, string, *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
		calls++
		return nil, genai.APIError{Code: 503, Message: "overloaded"}
	}}

	c := newClient(fm, Config{}, nil)
	_, err := c.GenerateImage(context.Background(), "x", "1:1")
	require.Error(t, err)
	assert.Equal(t, 1, calls, "default client should surface the first failure")
	assert.Same(t, fm, c.models)

	calls = 0
	c = newClient(fm, Config{Retries: 2}, nil)
	r, ok := c.models.(*retrying)
	require.True(t, ok, "Retries should wrap the models")
	r.delay = time.Millisecond
	_, err = c.GenerateImage(context.Background(), "x", "1:1")
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}
