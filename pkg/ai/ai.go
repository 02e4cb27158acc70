// Package ai defines the generative collaborators the studio depends on.
//
// The studio never runs a model itself. Image generation, image editing and
// the art-direction calls that produce layout documents are consumed through
// the interfaces below; [gemini] provides the hosted implementation and tests
// substitute fakes.
//
// Implementations report failures with typed errors from pkg/errors:
// GENERATION_FAILED for [ImageGenerator], EDIT_FAILED for [ImageEditor] and
// BRIEF_FAILED for the brief operations. Nothing in this package retries.
//
// [gemini]: github.com/matzehuels/designstudio/pkg/ai/gemini
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/designstudio/pkg/geometry"
	"github.com/matzehuels/designstudio/pkg/layout"
)

// ImageGenerator turns a prompt into an encoded image.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, ratio geometry.AspectRatio) ([]byte, error)
}

// ImageEditor applies a prompt to an existing image.
type ImageEditor interface {
	EditImage(ctx context.Context, prompt string, image []byte, mimeType string) ([]byte, error)
}

// BriefGenerator produces a layout document from a client brief.
type BriefGenerator interface {
	GenerateLayoutBrief(ctx context.Context, brief string, c Constraints) (*layout.Document, error)
}

// BriefClarifier asks follow-up questions about a vague brief. An empty
// result means the brief is specific enough.
type BriefClarifier interface {
	ClarifyBrief(ctx context.Context, prompt string) ([]Question, error)
}

// BriefRefiner adjusts an existing document. It must not mutate doc.
type BriefRefiner interface {
	RefineBrief(ctx context.Context, doc *layout.Document, request string) (*layout.Document, error)
}

// PromptEnhancer rewrites a short prompt into a detailed one.
type PromptEnhancer interface {
	EnhancePrompt(ctx context.Context, prompt string, framing Framing) (string, error)
}

// Client bundles every collaborator.
type Client interface {
	ImageGenerator
	ImageEditor
	BriefGenerator
	BriefClarifier
	BriefRefiner
	PromptEnhancer
}

// Question is a multiple-choice clarification.
type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Answer pairs a question with the chosen option.
type Answer struct {
	Question string
	Choice   string
}

// CombineBrief appends clarification answers to the original brief.
func CombineBrief(brief string, answers []Answer) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(brief))
	for _, a := range answers {
		if strings.TrimSpace(a.Choice) == "" {
			continue
		}
		fmt.Fprintf(&b, "\n- %s %s", strings.TrimSpace(a.Question), strings.TrimSpace(a.Choice))
	}
	return b.String()
}

// Framing is the camera framing hint for prompt enhancement.
type Framing string

const (
	FramingAuto    Framing = "auto"
	FramingCloseUp Framing = "close-up"
	FramingWide    Framing = "wide"
	FramingProduct Framing = "product"
)

// ParseFraming accepts the framing names above. Empty means auto.
func ParseFraming(s string) (Framing, error) {
	switch f := Framing(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FramingAuto, nil
	case FramingAuto, FramingCloseUp, FramingWide, FramingProduct:
		return f, nil
	default:
		return "", fmt.Errorf("unknown framing %q (want auto, close-up, wide or product)", s)
	}
}

// Describe returns the photographic direction for the framing.
func (f Framing) Describe() string {
	switch f {
	case FramingCloseUp:
		return "close-up: macro photography, extreme detail"
	case FramingWide:
		return "wide shot: epic establishing shot, vast landscape"
	case FramingProduct:
		return "product focus: minimal background, bokeh, 85mm lens"
	default:
		return "automatic: pick the framing that suits the subject best"
	}
}

// Target is what a design is optimized for.
type Target string

const (
	TargetSocial Target = "social"
	TargetPrint  Target = "print"
)

// FontChoiceAI lets the model pick fonts.
const FontChoiceAI = "ai-choice"

// CustomSize is a physical canvas size as the user entered it.
type CustomSize struct {
	Width  float64
	Height float64
	Unit   geometry.Unit
}

// Constraints shape a layout brief.
type Constraints struct {
	// AspectRatio is used when CustomSize is nil.
	AspectRatio geometry.AspectRatio
	CustomSize  *CustomSize

	Target   Target
	PrintDPI int // 300 or 600 when Target is print

	// FontFamily forces one family for every text element. Empty or
	// FontChoiceAI lets the model choose.
	FontFamily string

	// UserImage is an encoded image the design is built around.
	UserImage     []byte
	UserImageMIME string
}

// ForcedFont returns the family the caller pinned, or "".
func (c Constraints) ForcedFont() string {
	f := strings.TrimSpace(c.FontFamily)
	if f == "" || strings.EqualFold(f, FontChoiceAI) {
		return ""
	}
	return f
}
