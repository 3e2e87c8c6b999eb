package catalog

import (
	"iter"
	"strings"

	"pokedex/internal/textutil"
)

// Search yields, in source order, records whose identifier or display names
// contain query after folding (NFKC, lowercase), or whose catalog number
// equals query ignoring leading zeros. An empty query yields every record.
func (idx *Index) Search(query string) iter.Seq[Record] {
	folded := textutil.Fold(query)
	number := strings.TrimLeft(folded, "0")
	return func(yield func(Record) bool) {
		for rec := range idx.Records() {
			if folded != "" && !matches(rec, folded, number) {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

func matches(rec Record, folded, number string) bool {
	for _, field := range []string{rec.ID, rec.Name, rec.AltName} {
		if field != "" && strings.Contains(textutil.Fold(field), folded) {
			return true
		}
	}
	return number != "" && rec.Number != "" && strings.TrimLeft(strings.TrimSpace(rec.Number), "0") == number
}
