package catalog

import (
	"slices"
	"testing"
)

func TestSearch(t *testing.T) {
	idx, err := Build([]Record{
		{Name: "皮卡丘", ID: "Pikachu", AltName: "ピカチュウ", Number: "0025"},
		{Name: "雷丘", ID: "Raichu", AltName: "ライチュウ", Number: "0026"},
		{Name: "伊布", ID: "Eevee", AltName: "イーブイ", Number: "0133"},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	ids := func(query string) []string {
		var out []string
		for rec := range idx.Search(query) {
			out = append(out, rec.ID)
		}
		return out
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Pikachu", "Raichu", "Eevee"}},
		{"chu", []string{"Pikachu", "Raichu"}},
		{"  PIKA ", []string{"Pikachu"}},
		{"ＰＩＫＡ", []string{"Pikachu"}},
		{"伊布", []string{"Eevee"}},
		{"ﾋﾟｶ", []string{"Pikachu"}},
		{"25", []string{"Pikachu"}},
		{"0133", []string{"Eevee"}},
		{"mew", nil},
	}
	for _, tt := range tests {
		if got := ids(tt.query); !slices.Equal(got, tt.want) {
			t.Errorf("Search(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestSearchStopsEarly(t *testing.T) {
	idx, err := Build([]Record{{Name: "a", ID: "a1"}, {Name: "b", ID: "a2"}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	count := 0
	for range idx.Search("a") {
		count++
		break
	}
	if count != 1 {
		t.Fatalf("expected early stop, got %d", count)
	}
	var nilIdx *Index
	for range nilIdx.Search("") {
		t.Fatal("nil index must yield nothing")
	}
}
