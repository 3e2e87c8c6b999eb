package catalog

import (
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"
)

func collectIDs(t *testing.T, idx *Index, prefix string) []string {
	t.Helper()
	var ids []string
	for rec := range idx.ScanPrefix(prefix) {
		ids = append(ids, rec.ID)
	}
	return ids
}

func TestBuildLookupRoundTrip(t *testing.T) {
	records := []Record{
		{Name: "皮卡丘", ID: "Pikachu", AltName: "ピカチュウ", Generation: "第一世代", Types: []string{"電"}, Number: "0025"},
		{Name: "伊布", ID: "Eevee", Types: []string{"一般"}, Number: "0133"},
	}
	idx, err := Build(records)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", idx.Len())
	}
	for _, rec := range records {
		got, ok := idx.Lookup(strings.ToLower(rec.ID))
		if !ok {
			t.Fatalf("expected lookup of %q to succeed", rec.ID)
		}
		if !reflect.DeepEqual(got, rec) {
			t.Fatalf("lookup %q = %+v, want %+v", rec.ID, got, rec)
		}
	}
	if _, ok := idx.Lookup("Pikachu"); ok {
		t.Fatal("lookup must use the normalized key")
	}
}

func TestBuildLastDuplicateWinsButKeepsFirstPosition(t *testing.T) {
	idx, err := Build([]Record{
		{Name: "first", ID: "Mew"},
		{Name: "middle", ID: "mewtwo"},
		{Name: "last", ID: "MEW"},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("expected 2 distinct keys, got %d", idx.Len())
	}
	rec, ok := idx.Lookup("mew")
	if !ok || rec.Name != "last" {
		t.Fatalf("expected last duplicate to win, got %+v", rec)
	}
	var names []string
	for rec := range idx.ScanPrefix("mew") {
		names = append(names, rec.Name)
	}
	if want := []string{"last", "middle"}; !slices.Equal(names, want) {
		t.Fatalf("scan order = %v, want %v", names, want)
	}
}

func TestBuildRejectsMissingIdentifier(t *testing.T) {
	_, err := Build([]Record{
		{Name: "Bulbasaur", ID: "bulbasaur"},
		{Name: "Missingno"},
	})
	if err == nil {
		t.Fatal("expected malformed record error")
	}
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
	var malformed *MalformedRecordError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedRecordError, got %T", err)
	}
	if malformed.Position != 1 || malformed.Record.Name != "Missingno" {
		t.Fatalf("unexpected malformed details: %+v", malformed)
	}
}

func TestBuildRejectsBlankIdentifier(t *testing.T) {
	if _, err := Build([]Record{{Name: "Blank", ID: "   "}}); !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("expected blank identifier to be malformed, got %v", err)
	}
}

func TestBuildSkipMalformedReportsAndContinues(t *testing.T) {
	var reported []int
	idx, err := Build([]Record{
		{Name: "Missingno"},
		{Name: "妙蛙種子", ID: "bulbasaur"},
		{Name: ""},
	}, WithSkipMalformed(func(m *MalformedRecordError) {
		reported = append(reported, m.Position)
	}))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if idx.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", idx.Len())
	}
	if !slices.Equal(reported, []int{0, 2}) {
		t.Fatalf("reported positions = %v", reported)
	}
	if _, err := Build([]Record{{Name: "Missingno"}}, WithSkipMalformed(nil)); err != nil {
		t.Fatalf("nil reporter should still skip: %v", err)
	}
}

func TestBuildCopiesTypes(t *testing.T) {
	types := []string{"火", "飛行"}
	idx, err := Build([]Record{{Name: "噴火龍", ID: "charizard", Types: types}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	types[0] = "水"
	rec, _ := idx.Lookup("charizard")
	if rec.Types[0] != "火" {
		t.Fatalf("index shares the caller's slice: %v", rec.Types)
	}
}

func TestScanPrefixOrderAndRestart(t *testing.T) {
	idx, err := Build([]Record{
		{ID: "charizard-mega"},
		{ID: "pikachu"},
		{ID: "charizard"},
		{ID: "charmander"},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := []string{"charizard-mega", "charizard"}
	if got := collectIDs(t, idx, "chariz"); !slices.Equal(got, want) {
		t.Fatalf("first scan = %v, want %v", got, want)
	}
	if got := collectIDs(t, idx, "chariz"); !slices.Equal(got, want) {
		t.Fatalf("second scan = %v, want %v", got, want)
	}
	if got := collectIDs(t, idx, ""); len(got) != 4 {
		t.Fatalf("empty prefix should yield every record, got %v", got)
	}
	if got := collectIDs(t, idx, "zz"); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}

func TestScanPrefixStopsEarly(t *testing.T) {
	idx, err := Build([]Record{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	seen := 0
	for range idx.ScanPrefix("a") {
		seen++
		break
	}
	if seen != 1 {
		t.Fatalf("expected early stop after 1 record, saw %d", seen)
	}
}

func TestNilIndexIsEmpty(t *testing.T) {
	var idx *Index
	if idx.Len() != 0 {
		t.Fatal("nil index should be empty")
	}
	if _, ok := idx.Lookup("x"); ok {
		t.Fatal("nil index lookup should miss")
	}
	for range idx.Records() {
		t.Fatal("nil index should yield nothing")
	}
}
