package textutil

import "testing"

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Pikachu", "pikachu"},
		{"CHARIZARD-MEGA-X", "charizard-mega-x"},
		{"  Mr. Mime ", "  mr. mime "},
		{"皮卡丘", "皮卡丘"},
		{"ÉVOLI", "évoli"},
	}
	for _, tt := range tests {
		if got := NormalizeLabel(tt.in); got != tt.want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"charizard-gmax", "charizard"},
		{"charizard", "charizard"},
		{"ho-oh", "ho"},
		{"-leading", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := BaseName(tt.in); got != tt.want {
			t.Errorf("BaseName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFoldAppliesCompatibilityMapping(t *testing.T) {
	if got := Fold("  ＰＩＫＡ "); got != "pika" {
		t.Fatalf("Fold full-width = %q, want pika", got)
	}
	if got := Fold("   "); got != "" {
		t.Fatalf("Fold blank = %q, want empty", got)
	}
}
