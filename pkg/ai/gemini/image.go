package gemini

import (
	"context"
	"strings"

	"google.golang.org/genai"

	errs "github.com/matzehuels/designstudio/pkg/errors"
	"github.com/matzehuels/designstudio/pkg/geometry"
)

// GenerateImage renders one PNG at a named aspect ratio. Custom ratios are
// classified to the nearest named one since Imagen only accepts those.
func (c *Client) GenerateImage(ctx context.Context, prompt string, ratio geometry.AspectRatio) ([]byte, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "image prompt is empty")
	}
	n, err := geometry.RatioToNumber(ratio)
	if err != nil {
		return nil, err
	}
	named := geometry.NearestNamedRatio(n)

	c.logger.Debug("generating image", "model", c.cfg.ImageModel, "ratio", named, "prompt_len", len(prompt))
	done := observe(ctx, "generate", c.cfg.ImageModel)
	resp, err := c.models.GenerateImages(ctx, c.cfg.ImageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/png",
		AspectRatio:    string(named),
	})
	done(err)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeGeneration, err, "image generation failed")
	}
	return generatedImage(resp)
}

func generatedImage(resp *genai.GenerateImagesResponse) ([]byte, error) {
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, errs.New(errs.ErrCodeGeneration, "image generation returned no image")
	}
	img := resp.GeneratedImages[0]
	if img == nil || img.Image == nil || len(img.Image.ImageBytes) == 0 {
		if img != nil && img.RAIFilteredReason != "" {
			return nil, errs.New(errs.ErrCodeGeneration, "image was filtered: %s", img.RAIFilteredReason)
		}
		return nil, errs.New(errs.ErrCodeGeneration, "image generation returned no image")
	}
	return img.Image.ImageBytes, nil
}

// EditImage sends image with an instruction and returns the first image the
// model answers with.
func (c *Client) EditImage(ctx context.Context, prompt string, image []byte, mimeType string) ([]byte, error) {
	if len(image) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "no image to edit")
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "edit prompt is empty")
	}
	if mimeType == "" {
		mimeType = "image/png"
	}

	contents := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromBytes(image, mimeType),
		genai.NewPartFromText(prompt),
	}, genai.RoleUser)}

	c.logger.Debug("editing image", "model", c.cfg.EditModel, "mime", mimeType, "bytes", len(image))
	done := observe(ctx, "edit", c.cfg.EditModel)
	resp, err := c.models.GenerateContent(ctx, c.cfg.EditModel, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityImage)},
	})
	done(err)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeEdit, err, "image edit failed")
	}
	return inlineImage(resp)
}

func inlineImage(resp *genai.GenerateContentResponse) ([]byte, error) {
	if err := blocked(resp); err != nil {
		return nil, errs.Wrap(errs.ErrCodeEdit, err, "image edit failed")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, nil
		}
	}
	return nil, errs.New(errs.ErrCodeEdit, "no image found in the edit response")
}
