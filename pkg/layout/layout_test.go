package layout

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	errs "github.com/matzehuels/designstudio/pkg/errors"
)

const sampleDocument = `{
  "imagePrompt": "sunlit bakery counter",
  "fontSuggestions": [{"fontFamily": "Playfair Display", "fontWeight": "700"}],
  "colorPalette": ["#2b2118", "#f4e9d8"],
  "layout": [
    {"type": "text", "text": "FRESH\nBREAD", "fontSize": 12, "fontFamily": "Playfair Display",
     "fontWeight": "700", "color": "#f4e9d8", "position": {"top": "20%", "left": "50%"}, "textAlign": "center"},
    {"type": "image", "position": {"top": "55", "left": 35}, "size": {"width": "30%", "height": "auto"}},
    {"type": "image", "position": {"top": "5%", "left": "5%"}, "size": {"width": "10%", "height": "12.5%"}}
  ]
}`

func TestDocumentUnmarshal(t *testing.T) {
	var doc Document
	if err := json.Unmarshal([]byte(sampleDocument), &doc); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if len(doc.Layout) != 3 {
		t.Fatalf("len(Layout) = %d, want 3", len(doc.Layout))
	}

	text := doc.Layout[0].Text
	if text == nil {
		t.Fatal("Layout[0] should be a text element")
	}
	if text.Text != "FRESH\nBREAD" {
		t.Errorf("Text = %q, want %q", text.Text, "FRESH\nBREAD")
	}
	if text.Position.Top != 20 || text.Position.Left != 50 {
		t.Errorf("Position = %+v, want top 20 left 50", text.Position)
	}

	img := doc.Layout[1].Image
	if img == nil {
		t.Fatal("Layout[1] should be an image element")
	}
	if img.Position.Top != 55 || img.Position.Left != 35 {
		t.Errorf("Position = %+v, want top 55 left 35", img.Position)
	}
	if img.Size.Width != 30 || !img.Size.Height.Auto {
		t.Errorf("Size = %+v, want width 30 height auto", img.Size)
	}

	fixed := doc.Layout[2].Image
	if fixed.Size.Height.Auto || fixed.Size.Height.Value != 12.5 {
		t.Errorf("Height = %+v, want 12.5%%", fixed.Size.Height)
	}

	if err := doc.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestElementMarshalTagsType(t *testing.T) {
	doc := Document{Layout: []Element{
		NewText(TextElement{Text: "SALE", FontSize: 10, TextAlign: AlignCenter, Position: Position{Top: 50, Left: 50}}),
		NewImage(ImageElement{Size: Size{Width: 30, Height: AutoDimension()}}),
	}}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"type":"text"`, `"type":"image"`, `"top":"50%"`, `"height":"auto"`} {
		if !strings.Contains(s, want) {
			t.Errorf("marshaled document missing %s: %s", want, s)
		}
	}

	var back Document
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if back.Layout[0].Kind() != KindText || back.Layout[1].Kind() != KindImage {
		t.Errorf("kinds = %s,%s, want text,image", back.Layout[0].Kind(), back.Layout[1].Kind())
	}
}

func TestElementUnmarshalWithoutType(t *testing.T) {
	var img Element
	if err := json.Unmarshal([]byte(`{"position":{"top":"1%","left":"1%"},"size":{"width":"5%","height":"auto"}}`), &img); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if img.Kind() != KindImage {
		t.Errorf("Kind() = %q, want image", img.Kind())
	}

	var txt Element
	if err := json.Unmarshal([]byte(`{"text":"hi","fontSize":5}`), &txt); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if txt.Kind() != KindText {
		t.Errorf("Kind() = %q, want text", txt.Kind())
	}

	var bad Element
	if err := json.Unmarshal([]byte(`{"type":"video"}`), &bad); err == nil {
		t.Error("Unmarshal of unknown type should fail")
	}
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		in      string
		want    Percent
		wantErr bool
	}{
		{"50%", 50, false},
		{" 12.5 % ", 12.5, false},
		{"0", 0, false},
		{"-10%", -10, false},
		{"half", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePercent(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePercent(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePercent(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPercentOf(t *testing.T) {
	if got := Percent(50).Of(800); got != 400 {
		t.Errorf("Of(800) = %v, want 400", got)
	}
	if got := Percent(30).Of(1000); got != 300 {
		t.Errorf("Of(1000) = %v, want 300", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		el      Element
		wantErr bool
	}{
		{"valid text", NewText(TextElement{FontSize: 10, TextAlign: AlignRight}), false},
		{"font too small", NewText(TextElement{FontSize: 2}), true},
		{"font too large", NewText(TextElement{FontSize: 16}), true},
		{"bad alignment", NewText(TextElement{FontSize: 5, TextAlign: "justify"}), true},
		{"valid image", NewImage(ImageElement{Size: Size{Width: 20, Height: Pct(10)}}), false},
		{"zero width", NewImage(ImageElement{Size: Size{Width: 0, Height: AutoDimension()}}), true},
		{"zero height", NewImage(ImageElement{Size: Size{Width: 10}}), true},
		{"nan font", NewText(TextElement{FontSize: math.NaN()}), true},
		{"nan position", NewText(TextElement{FontSize: 10, Position: Position{Top: Percent(math.NaN())}}), true},
		{"infinite position", NewImage(ImageElement{Position: Position{Left: Percent(math.Inf(1))}, Size: Size{Width: 10, Height: AutoDimension()}}), true},
		{"negative width", NewImage(ImageElement{Size: Size{Width: -5, Height: AutoDimension()}}), true},
		{"nan width", NewImage(ImageElement{Size: Size{Width: Percent(math.NaN()), Height: AutoDimension()}}), true},
		{"infinite height", NewImage(ImageElement{Size: Size{Width: 10, Height: Pct(math.Inf(1))}}), true},
		{"huge width", NewImage(ImageElement{Size: Size{Width: 1e15, Height: AutoDimension()}}), true},
		{"width above cap", NewImage(ImageElement{Size: Size{Width: MaxSlotSize + 1, Height: AutoDimension()}}), true},
		{"width at cap", NewImage(ImageElement{Size: Size{Width: MaxSlotSize, Height: Pct(MaxSlotSize)}}), false},
		{"empty", Element{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &Document{Layout: []Element{tt.el}}
			err := doc.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errs.Is(err, errs.ErrCodeInvalidLayout) {
				t.Errorf("Validate() code = %v, want %v", errs.GetCode(err), errs.ErrCodeInvalidLayout)
			}
		})
	}
}

func TestClone(t *testing.T) {
	var doc Document
	if err := json.Unmarshal([]byte(sampleDocument), &doc); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	c := doc.Clone()
	c.Layout[0].Text.Text = "CHANGED"
	c.ColorPalette[0] = "#000000"

	if doc.Layout[0].Text.Text != "FRESH\nBREAD" {
		t.Error("Clone should not share text elements")
	}
	if doc.ColorPalette[0] != "#2b2118" {
		t.Error("Clone should not share the palette")
	}
	if c.Layout[1].Image == doc.Layout[1].Image {
		t.Error("Clone should not share image elements")
	}
}
