package gemini

import (
	"google.golang.org/genai"

	"github.com/matzehuels/designstudio/pkg/layout"
)

func stringSchema() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }

func positionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"top":  {Type: genai.TypeString, Description: `Percentage of the canvas height, e.g. "12%".`},
			"left": {Type: genai.TypeString, Description: `Percentage of the canvas width, e.g. "50%".`},
		},
		Required: []string{"top", "left"},
	}
}

// elementSchema describes both element kinds in one object. The API's schema
// subset has no oneOf, so the "type" tag decides which fields apply.
func elementSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"type": {Type: genai.TypeString, Enum: []string{layout.KindText, layout.KindImage}},
			"text": stringSchema(),
			"fontSize": {
				Type: genai.TypeNumber,
				Description: "A number between 3 (small print) and 15 (large headline): the font size as a " +
					"percentage of the artwork's total height. 10 means the text is 10% of the height.",
				Minimum: genai.Ptr(layout.MinFontSize),
				Maximum: genai.Ptr(layout.MaxFontSize),
			},
			"fontFamily": stringSchema(),
			"fontWeight": stringSchema(),
			"color":      {Type: genai.TypeString, Description: "CSS color, e.g. #1a1a1a."},
			"position":   positionSchema(),
			"textAlign":  {Type: genai.TypeString, Enum: []string{layout.AlignLeft, layout.AlignCenter, layout.AlignRight}},
			"size": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"width":  {Type: genai.TypeString, Description: `Percentage of the canvas width, e.g. "30%".`},
					"height": {Type: genai.TypeString, Description: `Percentage of the canvas height, or "auto".`},
				},
				Required: []string{"width", "height"},
			},
		},
		Required: []string{"type", "position"},
	}
}

func documentSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"imagePrompt": stringSchema(),
			"fontSuggestions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"fontFamily": stringSchema(),
						"fontWeight": stringSchema(),
					},
					Required: []string{"fontFamily", "fontWeight"},
				},
			},
			"colorPalette": {Type: genai.TypeArray, Items: stringSchema()},
			"layout":       {Type: genai.TypeArray, Items: elementSchema()},
		},
		Required: []string{"imagePrompt", "fontSuggestions", "colorPalette", "layout"},
	}
}

func questionsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"question": stringSchema(),
				"options":  {Type: genai.TypeArray, Items: stringSchema()},
			},
			Required: []string{"question", "options"},
		},
	}
}
