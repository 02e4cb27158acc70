// Package layout defines the abstract design document the compositor renders.
//
// A [Document] is produced by the brief-generation collaborator and treated as
// immutable input to compositing. Its elements are positioned and sized in
// percentages of the output canvas, which is what makes a document render the
// same way at any resolution.
//
// # JSON Format
//
//	{
//	  "imagePrompt": "a sunlit bakery counter, shallow depth of field",
//	  "fontSuggestions": [{"fontFamily": "Playfair Display", "fontWeight": "700"}],
//	  "colorPalette": ["#2b2118", "#f4e9d8", "#c8553d"],
//	  "layout": [
//	    {"type": "text", "text": "FRESH\nBREAD", "fontSize": 12,
//	     "fontFamily": "Playfair Display", "fontWeight": "700", "color": "#f4e9d8",
//	     "position": {"top": "20%", "left": "50%"}, "textAlign": "center"},
//	    {"type": "image", "position": {"top": "55%", "left": "35%"},
//	     "size": {"width": "30%", "height": "auto"}}
//	  ]
//	}
//
// Percentages may be written as "50%", "50" or 50.
package layout

import (
	"encoding/json"
	"fmt"
	"strings"

	errs "github.com/matzehuels/designstudio/pkg/errors"
)

// Element kinds.
const (
	KindText  = "text"
	KindImage = "image"
)

// Text alignment values.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Font size bounds, in percent of canvas height.
const (
	MinFontSize = 3.0
	MaxFontSize = 15.0
)

// MaxSlotSize bounds an image slot's width and height, in percent of the
// canvas.
const MaxSlotSize = 1000.0

// Document is a complete design plan.
type Document struct {
	ImagePrompt     string           `json:"imagePrompt"`
	FontSuggestions []FontSuggestion `json:"fontSuggestions"`
	ColorPalette    []string         `json:"colorPalette"`
	Layout          []Element        `json:"layout"`
}

// FontSuggestion pairs a family with a weight.
type FontSuggestion struct {
	FontFamily string `json:"fontFamily"`
	FontWeight string `json:"fontWeight"`
}

// Position places an element's anchor.
type Position struct {
	Top  Percent `json:"top"`
	Left Percent `json:"left"`
}

// Size sizes an image element. Height may be auto.
type Size struct {
	Width  Percent   `json:"width"`
	Height Dimension `json:"height"`
}

// Element is one layout item. Exactly one of Text or Image is set.
type Element struct {
	Text  *TextElement
	Image *ImageElement
}

// TextElement is a run of text anchored at Position.
type TextElement struct {
	Text       string   `json:"text"`
	FontSize   float64  `json:"fontSize"`
	FontFamily string   `json:"fontFamily"`
	FontWeight string   `json:"fontWeight"`
	Color      string   `json:"color"`
	Position   Position `json:"position"`
	TextAlign  string   `json:"textAlign"`
}

// ImageElement is a slot for the user's foreground image.
type ImageElement struct {
	Position Position `json:"position"`
	Size     Size     `json:"size"`
}

// NewText returns a text element.
func NewText(t TextElement) Element { return Element{Text: &t} }

// NewImage returns an image element.
func NewImage(i ImageElement) Element { return Element{Image: &i} }

// Kind returns KindText, KindImage or "" for an empty element.
func (e Element) Kind() string {
	switch {
	case e.Text != nil:
		return KindText
	case e.Image != nil:
		return KindImage
	default:
		return ""
	}
}

type textJSON struct {
	Type string `json:"type"`
	TextElement
}

type imageJSON struct {
	Type string `json:"type"`
	ImageElement
}

// MarshalJSON writes the element with its "type" tag.
func (e Element) MarshalJSON() ([]byte, error) {
	switch {
	case e.Text != nil:
		return json.Marshal(textJSON{Type: KindText, TextElement: *e.Text})
	case e.Image != nil:
		return json.Marshal(imageJSON{Type: KindImage, ImageElement: *e.Image})
	default:
		return nil, fmt.Errorf("layout element has no variant")
	}
}

// UnmarshalJSON dispatches on the "type" tag. Elements without a tag are
// classified by shape: anything carrying a size is an image.
func (e *Element) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type string          `json:"type"`
		Size json.RawMessage `json:"size"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	kind := strings.ToLower(strings.TrimSpace(probe.Type))
	if kind == "" {
		kind = KindText
		if len(probe.Size) > 0 {
			kind = KindImage
		}
	}

	switch kind {
	case KindText:
		var t textJSON
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("text element: %w", err)
		}
		*e = Element{Text: &t.TextElement}
	case KindImage:
		var i imageJSON
		if err := json.Unmarshal(data, &i); err != nil {
			return fmt.Errorf("image element: %w", err)
		}
		*e = Element{Image: &i.ImageElement}
	default:
		return fmt.Errorf("unknown layout element type %q", probe.Type)
	}
	return nil
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		ImagePrompt:     d.ImagePrompt,
		FontSuggestions: append([]FontSuggestion(nil), d.FontSuggestions...),
		ColorPalette:    append([]string(nil), d.ColorPalette...),
		Layout:          make([]Element, len(d.Layout)),
	}
	for i, el := range d.Layout {
		switch {
		case el.Text != nil:
			t := *el.Text
			out.Layout[i] = Element{Text: &t}
		case el.Image != nil:
			im := *el.Image
			out.Layout[i] = Element{Image: &im}
		}
	}
	return out
}

// Validate checks structural rules. Font sizes outside 3–15, unknown
// alignments, non-finite percentages and image slots larger than
// MaxSlotSize are reported, since the compositor would otherwise render
// something the brief never asked for.
func (d *Document) Validate() error {
	if d == nil {
		return errs.New(errs.ErrCodeInvalidLayout, "layout document is nil")
	}
	for i, el := range d.Layout {
		switch {
		case el.Text != nil:
			t := el.Text
			if !(t.FontSize >= MinFontSize && t.FontSize <= MaxFontSize) {
				return errs.New(errs.ErrCodeInvalidLayout, "element %d: fontSize %g outside %g–%g", i, t.FontSize, MinFontSize, MaxFontSize)
			}
			if err := t.Position.validate(); err != nil {
				return errs.Wrap(errs.ErrCodeInvalidLayout, err, "element %d", i)
			}
			switch t.TextAlign {
			case "", AlignLeft, AlignCenter, AlignRight:
			default:
				return errs.New(errs.ErrCodeInvalidLayout, "element %d: unknown textAlign %q", i, t.TextAlign)
			}
		case el.Image != nil:
			im := el.Image
			if err := im.Position.validate(); err != nil {
				return errs.Wrap(errs.ErrCodeInvalidLayout, err, "element %d", i)
			}
			if !im.Size.Width.slotSize() {
				return errs.New(errs.ErrCodeInvalidLayout, "element %d: image width %s must be above 0%% and at most %g%%", i, im.Size.Width, MaxSlotSize)
			}
			if !im.Size.Height.Auto && !im.Size.Height.Value.slotSize() {
				return errs.New(errs.ErrCodeInvalidLayout, "element %d: image height %s must be auto, or above 0%% and at most %g%%", i, im.Size.Height.Value, MaxSlotSize)
			}
		default:
			return errs.New(errs.ErrCodeInvalidLayout, "element %d: empty element", i)
		}
	}
	return nil
}

func (p Position) validate() error {
	if !p.Top.finite() || !p.Left.finite() {
		return fmt.Errorf("position (%s, %s) must be finite", p.Top, p.Left)
	}
	return nil
}
