package webcolor

import (
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  RGB
		ok    bool
	}{
		{"rgb(255, 0, 0)", RGB{255, 0, 0}, true},
		{"rgb(0,0,0)", RGB{0, 0, 0}, true},
		{"rgba(12, 34, 56, 0.5)", RGB{12, 34, 56}, true},
		{"  rgb( 10 , 20 , 30 )  ", RGB{10, 20, 30}, true},
		{"rgb(300, 0, 0)", RGB{255, 0, 0}, true}, // out-of-range channels clamp
		{"#ffffff", RGB{}, false},
		{"blue", RGB{}, false},
		{"transparent", RGB{}, false},
		{"hsl(120, 50%, 50%)", RGB{}, false},
		{"rgb(1, 2)", RGB{}, false},
		{"", RGB{}, false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.input)
		if ok != tt.ok {
			t.Errorf("Parse(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestTransparent(t *testing.T) {
	for _, s := range []string{"transparent", "TRANSPARENT", "", "rgba(0, 0, 0, 0)", "rgba(255, 255, 255, 0.0)"} {
		if !Transparent(s) {
			t.Errorf("Transparent(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"rgb(0, 0, 0)", "rgba(0, 0, 0, 0.5)", "rgba(0, 0, 0, 1)", "blue"} {
		if Transparent(s) {
			t.Errorf("Transparent(%q) = true, want false", s)
		}
	}
}

func TestRatioBlackOnWhite(t *testing.T) {
	ratio := Ratio("rgb(0, 0, 0)", "rgb(255, 255, 255)")
	if math.Abs(ratio-21) > 0.01 {
		t.Errorf("black on white ratio = %f, want 21", ratio)
	}
	// Order must not matter
	if flipped := Ratio("rgb(255, 255, 255)", "rgb(0, 0, 0)"); math.Abs(flipped-ratio) > 1e-9 {
		t.Errorf("ratio is not symmetric: %f vs %f", ratio, flipped)
	}
}

func TestRatioSameColor(t *testing.T) {
	ratio := Ratio("rgb(100, 150, 200)", "rgb(100, 150, 200)")
	if math.Abs(ratio-1) > 1e-9 {
		t.Errorf("same-color ratio = %f, want 1", ratio)
	}
}

func TestRatioUnparseable(t *testing.T) {
	if ratio := Ratio("blue", "rgb(255, 255, 255)"); ratio != -1 {
		t.Errorf("unparseable foreground: ratio = %f, want -1", ratio)
	}
	if ratio := Ratio("rgb(0, 0, 0)", "linear-gradient(red, blue)"); ratio != -1 {
		t.Errorf("unparseable background: ratio = %f, want -1", ratio)
	}
}

func TestRatioGrayOnWhite(t *testing.T) {
	// rgb(119, 119, 119) on white is ~4.48, just under the 4.5 threshold
	ratio := Ratio("rgb(119, 119, 119)", "rgb(255, 255, 255)")
	if ratio >= 4.5 || ratio < 4.4 {
		t.Errorf("gray on white ratio = %f, want just below 4.5", ratio)
	}
}

func TestEffectiveBackground(t *testing.T) {
	tests := []struct {
		name  string
		chain []string
		want  string
	}{
		{"empty chain", nil, DefaultBackground},
		{"nearest wins", []string{"rgb(10, 10, 10)", "rgb(20, 20, 20)"}, "rgb(10, 10, 10)"},
		{"skips transparent", []string{"rgba(0, 0, 0, 0)", "transparent", "rgb(30, 30, 30)"}, "rgb(30, 30, 30)"},
		{"skips unparseable", []string{"linear-gradient(red, blue)", "rgb(40, 40, 40)"}, "rgb(40, 40, 40)"},
		{"all transparent", []string{"transparent", "rgba(0, 0, 0, 0)"}, DefaultBackground},
		{"translucent counts", []string{"rgba(50, 50, 50, 0.5)"}, "rgba(50, 50, 50, 0.5)"},
	}
	for _, tt := range tests {
		if got := EffectiveBackground(tt.chain, DefaultBackground); got != tt.want {
			t.Errorf("%s: EffectiveBackground = %q, want %q", tt.name, got, tt.want)
		}
	}
}
