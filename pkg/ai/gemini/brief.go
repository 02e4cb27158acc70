package gemini

import (
	"context"
	"encoding/json"
	"strings"

	"google.golang.org/genai"

	"github.com/matzehuels/designstudio/pkg/ai"
	errs "github.com/matzehuels/designstudio/pkg/errors"
	"github.com/matzehuels/designstudio/pkg/layout"
)

func (c *Client) jsonConfig(instruction string, schema *genai.Schema) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    schema,
	}
}

// GenerateLayoutBrief asks the brief model for a layout document.
func (c *Client) GenerateLayoutBrief(ctx context.Context, brief string, cons ai.Constraints) (*layout.Document, error) {
	brief = strings.TrimSpace(brief)
	if brief == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "design brief is empty")
	}

	parts := []*genai.Part{genai.NewPartFromText("Create the design plan for: " + brief)}
	if len(cons.UserImage) > 0 {
		mime := cons.UserImageMIME
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, genai.NewPartFromBytes(cons.UserImage, mime))
	}

	c.logger.Debug("generating brief", "model", c.cfg.BriefModel, "user_image", len(cons.UserImage) > 0)
	done := observe(ctx, "brief", c.cfg.BriefModel)
	resp, err := c.models.GenerateContent(ctx, c.cfg.BriefModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		c.jsonConfig(briefInstruction(brief, cons), documentSchema()))
	done(err)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeBrief, err, "design brief failed")
	}
	doc, err := parseDocument(resp, cons.ForcedFont())
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeBrief, err, "design brief failed")
	}
	return doc, nil
}

// ClarifyBrief asks for follow-up questions about a brief.
func (c *Client) ClarifyBrief(ctx context.Context, prompt string) ([]ai.Question, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "design brief is empty")
	}
	done := observe(ctx, "clarify", c.cfg.BriefModel)
	resp, err := c.models.GenerateContent(ctx, c.cfg.BriefModel,
		genai.Text("Analyze this request: "+quote(prompt)),
		c.jsonConfig(clarifyInstruction, questionsSchema()))
	done(err)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeBrief, err, "brief analysis failed")
	}
	qs, err := parseQuestions(resp)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeBrief, err, "brief analysis failed")
	}
	return qs, nil
}

// RefineBrief asks the model to adjust doc. doc itself is left untouched.
func (c *Client) RefineBrief(ctx context.Context, doc *layout.Document, request string) (*layout.Document, error) {
	if doc == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "no design to refine")
	}
	request = strings.TrimSpace(request)
	if request == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "refinement request is empty")
	}
	original, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeBrief, err, "encode design")
	}
	prompt := "Original JSON:\n" + string(original) +
		"\n\nClient adjustment request:\n" + quote(request) +
		"\n\nRefine the JSON."

	done := observe(ctx, "refine", c.cfg.BriefModel)
	resp, err := c.models.GenerateContent(ctx, c.cfg.BriefModel, genai.Text(prompt),
		c.jsonConfig(refineInstruction, documentSchema()))
	done(err)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeBrief, err, "design refinement failed")
	}
	out, err := parseDocument(resp, "")
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeBrief, err, "design refinement failed")
	}
	return out, nil
}

// EnhancePrompt rewrites prompt for the image model. Any failure, including
// an empty answer, returns the original prompt.
func (c *Client) EnhancePrompt(ctx context.Context, prompt string, framing ai.Framing) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return prompt, nil
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(enhanceInstruction(framing), genai.RoleUser),
		Temperature:       genai.Ptr[float32](EnhanceTemperature),
	}
	done := observe(ctx, "enhance", c.cfg.EnhanceModel)
	resp, err := c.models.GenerateContent(ctx, c.cfg.EnhanceModel, genai.Text(prompt), cfg)
	done(err)
	if err != nil {
		c.logger.Warn("prompt enhancement failed, using the original prompt", "err", err)
		return prompt, nil
	}
	text, err := responseText(resp)
	if err != nil {
		c.logger.Warn("prompt enhancement returned nothing, using the original prompt", "err", err)
		return prompt, nil
	}
	return text, nil
}

func parseDocument(resp *genai.GenerateContentResponse, forcedFont string) (*layout.Document, error) {
	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}
	var doc layout.Document
	if err := decodeJSON(text, &doc); err != nil {
		return nil, err
	}
	normalizeDocument(&doc, forcedFont)
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// normalizeDocument clamps font sizes into range and applies a pinned font.
func normalizeDocument(doc *layout.Document, forcedFont string) {
	for _, el := range doc.Layout {
		t := el.Text
		if t == nil {
			continue
		}
		t.FontSize = min(max(t.FontSize, layout.MinFontSize), layout.MaxFontSize)
		t.TextAlign = strings.ToLower(strings.TrimSpace(t.TextAlign))
		if forcedFont != "" {
			t.FontFamily = forcedFont
		}
	}
	if forcedFont != "" {
		for i := range doc.FontSuggestions {
			doc.FontSuggestions[i].FontFamily = forcedFont
		}
	}
}

func parseQuestions(resp *genai.GenerateContentResponse) ([]ai.Question, error) {
	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}
	var raw []ai.Question
	if err := decodeJSON(text, &raw); err != nil {
		return nil, err
	}
	out := raw[:0]
	for _, q := range raw {
		q.Question = strings.TrimSpace(q.Question)
		if q.Question == "" || len(q.Options) == 0 {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
