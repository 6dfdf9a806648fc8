package query

import (
	"reflect"
	"testing"
)

func TestNormalizeFamilyDetection(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"xl beats v5", "is the v5 xl worth it", "v5_xl"},
		{"plain v5", "tell me more about the v5.", "v5"},
		{"compact xl", "v5xl deep bowl", "v5_xl"},
		{"core version", "does the core 2.0 come with a battery", "core_2"},
		{"bare core", "core settings", "core"},
		{"no family", "do you sell hoodies", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input).Family; got != tt.want {
				t.Errorf("Family = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeMaterial(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Material
	}{
		{"concentrate only", "best device for wax", MaterialConcentrate},
		{"dry herb only", "something for flower", MaterialDryHerb},
		{"both sides", "can it do flower and concentrates", MaterialBoth},
		{"neither", "what are your shipping rates", MaterialNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input).Material; got != tt.want {
				t.Errorf("Material = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeCategoryFilter(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"do you sell hoodies", "clothing"},
		{"got any stash jars?", "jars"},
		{"show me bubblers", "glass"},
		{"need a new 18650", "batteries"},
		{"how do i clean the bucket", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input).Category; got != tt.want {
			t.Errorf("Normalize(%q).Category = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeHints(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Hint
	}{
		{"troubleshooting", "my atomizer won't heat and tastes burnt", []Hint{HintTroubleshooting}},
		{"how to", "how do i set the temperature", []Hint{HintHowTo}},
		{"comparison", "difference between the v5 and the core", []Hint{HintComparison}},
		{"shopping", "looking for a gift", []Hint{HintShopping}},
		{"none", "hello there", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Normalize(tt.input)
			for _, h := range tt.want {
				if !n.Has(h) {
					t.Errorf("missing hint %s", h)
				}
			}
			if len(tt.want) == 0 && len(n.Hints) != 0 {
				t.Errorf("unexpected hints: %v", n.Hints)
			}
		})
	}
}

func TestNormalizeURLExtraction(t *testing.T) {
	n := Normalize("is this one any good https://store.example.com/products/v5-kit ?")
	if n.URL != "https://store.example.com/products/v5-kit" {
		t.Errorf("URL = %q", n.URL)
	}
	for _, tok := range n.Tokens {
		if tok == "https" {
			t.Error("URL leaked into tokens")
		}
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	n := Normalize("   ")
	if n.Cleaned != "" || len(n.Tokens) != 0 || len(n.Hints) != 0 {
		t.Errorf("empty input not neutral: %+v", n)
	}
}

func TestNormalizeStopWords(t *testing.T) {
	n := Normalize("do you have any jars for me")
	want := []string{"jars"}
	if !reflect.DeepEqual(n.Tokens, want) {
		t.Errorf("Tokens = %v, want %v", n.Tokens, want)
	}
}
