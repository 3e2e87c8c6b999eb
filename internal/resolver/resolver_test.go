package resolver

import (
	"reflect"
	"testing"

	"pokedex/internal/catalog"
)

func mustBuild(t *testing.T, records ...catalog.Record) *catalog.Index {
	t.Helper()
	idx, err := catalog.Build(records)
	if err != nil {
		t.Fatalf("catalog.Build failed: %v", err)
	}
	return idx
}

func TestResolveExactMatchIsCaseInsensitive(t *testing.T) {
	idx := mustBuild(t, catalog.Record{Name: "皮卡丘", ID: "pikachu"})
	for _, label := range []string{"Pikachu", "PIKACHU", "pikachu"} {
		result, rule := Explain(idx, label)
		matched, ok := result.(Matched)
		if !ok {
			t.Fatalf("Explain(%q) = %#v, want Matched", label, result)
		}
		if matched.Record.Name != "皮卡丘" {
			t.Fatalf("Explain(%q) name = %q", label, matched.Record.Name)
		}
		if rule != RuleExact {
			t.Fatalf("Explain(%q) rule = %s, want exact", label, rule)
		}
	}
}

func TestResolveExactBeatsPrefix(t *testing.T) {
	idx := mustBuild(t,
		catalog.Record{Name: "mega", ID: "charizard-mega"},
		catalog.Record{Name: "gmax", ID: "charizard-gmax"},
	)
	matched, ok := Resolve(idx, "Charizard-Gmax").(Matched)
	if !ok || matched.Record.Name != "gmax" {
		t.Fatalf("expected exact record, got %#v", matched)
	}
}

func TestResolvePrefixTieBreakIsFirstInserted(t *testing.T) {
	idx := mustBuild(t,
		catalog.Record{Name: "超級噴火龍", ID: "charizard-mega"},
		catalog.Record{Name: "噴火龍", ID: "charizard"},
	)
	result, rule := Explain(idx, "charizard-gmax")
	matched, ok := result.(Matched)
	if !ok {
		t.Fatalf("expected Matched, got %#v", result)
	}
	if matched.Record.ID != "charizard-mega" {
		t.Fatalf("expected first inserted record charizard-mega, got %q", matched.Record.ID)
	}
	if rule != RulePrefix {
		t.Fatalf("rule = %s, want prefix", rule)
	}
}

func TestResolvePrefixWithoutHyphenUsesWholeLabel(t *testing.T) {
	idx := mustBuild(t, catalog.Record{Name: "超夢", ID: "mewtwo"})
	matched, ok := Resolve(idx, "Mew").(Matched)
	if !ok || matched.Record.ID != "mewtwo" {
		t.Fatalf("expected mew to prefix-match mewtwo, got %#v", matched)
	}
}

func TestResolveUnmatchedPreservesLabel(t *testing.T) {
	idx := mustBuild(t, catalog.Record{Name: "伊布", ID: "eevee"})
	for _, label := range []string{"unknownmon", "UnknownMon", "zz-Top"} {
		result, rule := Explain(idx, label)
		if !reflect.DeepEqual(result, Unmatched{RawLabel: label}) {
			t.Fatalf("Explain(%q) = %#v", label, result)
		}
		if rule != RuleNone {
			t.Fatalf("rule = %s, want none", rule)
		}
	}
}

func TestResolveEmptyCatalog(t *testing.T) {
	empty := mustBuild(t)
	for _, idx := range []*catalog.Index{empty, nil} {
		for _, label := range []string{"Pikachu", "", " spaced-label "} {
			if got := Resolve(idx, label); !reflect.DeepEqual(got, Unmatched{RawLabel: label}) {
				t.Fatalf("Resolve(%q) on empty catalog = %#v", label, got)
			}
		}
	}
}

func TestResolveEmptyLabelMatchesFirstRecord(t *testing.T) {
	idx := mustBuild(t,
		catalog.Record{Name: "妙蛙種子", ID: "bulbasaur"},
		catalog.Record{Name: "皮卡丘", ID: "pikachu"},
	)
	result, rule := Explain(idx, "")
	matched, ok := result.(Matched)
	if !ok || matched.Record.ID != "bulbasaur" || rule != RulePrefix {
		t.Fatalf("expected empty label to prefix-match the first record, got %#v (%s)", result, rule)
	}
}

func TestResolveLeadingHyphenMatchesFirstRecord(t *testing.T) {
	idx := mustBuild(t, catalog.Record{ID: "bulbasaur"}, catalog.Record{ID: "ivysaur"})
	matched, ok := Resolve(idx, "-x").(Matched)
	if !ok || matched.Record.ID != "bulbasaur" {
		t.Fatalf("expected empty base name to match first record, got %#v", matched)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	idx := mustBuild(t,
		catalog.Record{Name: "超級噴火龍", ID: "charizard-mega", Types: []string{"火"}},
		catalog.Record{Name: "皮卡丘", ID: "pikachu"},
	)
	for _, label := range []string{"Pikachu", "charizard-gmax", "nothing", ""} {
		first := Resolve(idx, label)
		second := Resolve(idx, label)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("Resolve(%q) not idempotent: %#v vs %#v", label, first, second)
		}
	}
}
