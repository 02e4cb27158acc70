package ai

import "testing"

func TestCombineBrief(t *testing.T) {
	got := CombineBrief("  pizza logo ", []Answer{
		{Question: "Name?", Choice: "Bella"},
		{Question: "Style?", Choice: ""},
		{Question: "Mood?", Choice: "Rustic"},
	})
	want := "pizza logo\n- Name? Bella\n- Mood? Rustic"
	if got != want {
		t.Errorf("CombineBrief = %q, want %q", got, want)
	}
	if got := CombineBrief("plain", nil); got != "plain" {
		t.Errorf("CombineBrief without answers = %q", got)
	}
}

func TestParseFraming(t *testing.T) {
	tests := []struct {
		in      string
		want    Framing
		wantErr bool
	}{
		{"", FramingAuto, false},
		{"Close-Up", FramingCloseUp, false},
		{"wide", FramingWide, false},
		{"fisheye", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFraming(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFraming(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFraming(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestForcedFont(t *testing.T) {
	tests := map[string]string{
		"":            "",
		"ai-choice":   "",
		"AI-Choice":   "",
		" Montserrat": "Montserrat",
	}
	for in, want := range tests {
		if got := (Constraints{FontFamily: in}).ForcedFont(); got != want {
			t.Errorf("ForcedFont(%q) = %q, want %q", in, got, want)
		}
	}
}
