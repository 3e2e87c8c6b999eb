package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"pokedex/internal/catalog"
)

// SampleRecords returns a small catalog covering exact, prefix, and
// unresolved lookups. charizard-mega precedes charizard so prefix scans for
// "charizard" hit it first.
func SampleRecords() []catalog.Record {
	return []catalog.Record{
		{Name: "皮卡丘", ID: "Pikachu", AltName: "ピカチュウ", Generation: "第一世代", Types: []string{"電"}, Number: "0025"},
		{Name: "超級噴火龍", ID: "charizard-mega", Generation: "第六世代", Types: []string{"火", "龍"}, Number: "0006"},
		{Name: "噴火龍", ID: "charizard", AltName: "リザードン", Generation: "第一世代", Types: []string{"火", "飛行"}, Number: "0006"},
	}
}

// Catalog builds an index from SampleRecords.
func Catalog(t testing.TB) *catalog.Index {
	t.Helper()
	idx, err := catalog.Build(SampleRecords())
	if err != nil {
		t.Fatalf("catalog.Build: %v", err)
	}
	return idx
}

// WriteCatalog encodes records as a JSON array at path.
func WriteCatalog(t testing.TB, path string, records ...catalog.Record) {
	t.Helper()
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal catalog: %v", err)
	}
	WriteBytes(t, path, data)
}

// WriteBytes writes data to path, creating parent directories.
func WriteBytes(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
