package imaging

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#FFFFFF", White},
		{"#ff8040", color.NRGBA{255, 128, 64, 255}},
		{"000000", color.NRGBA{0, 0, 0, 255}},
		{"#f00", color.NRGBA{255, 0, 0, 255}},
		{"white", White},
		{" #00FF00 ", color.NRGBA{0, 255, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if err != nil {
				t.Fatalf("ParseColor(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q): got %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseColor_Invalid(t *testing.T) {
	for _, in := range []string{"", "#GGGGGG", "#12", "blue"} {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseColor(in); err == nil {
				t.Errorf("ParseColor(%q) should fail", in)
			}
		})
	}
}
