package catalog

import (
	"iter"
	"strings"

	"pokedex/internal/textutil"
)

// Index maps normalized canonical identifiers to records. The zero value and a
// nil *Index are empty. An Index is immutable after Build and safe for
// concurrent use.
type Index struct {
	entries map[string]Record
	// keys holds each normalized identifier once, at the position of its
	// first occurrence in the source.
	keys []string
}

// BuildOption customizes Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	onMalformed func(*MalformedRecordError)
}

// WithSkipMalformed makes Build drop records without an identifier instead of
// failing. report, when non-nil, is called once per dropped record.
func WithSkipMalformed(report func(*MalformedRecordError)) BuildOption {
	return func(o *buildOptions) {
		if report == nil {
			report = func(*MalformedRecordError) {}
		}
		o.onMalformed = report
	}
}

// Build indexes records by their lowercase identifier. When two records share
// a normalized identifier the later one wins. An identifier that is empty or
// whitespace-only makes the record malformed, yielding a
// *MalformedRecordError unless WithSkipMalformed is supplied. Other
// identifiers are indexed untrimmed.
func Build(records []Record, opts ...BuildOption) (*Index, error) {
	var options buildOptions
	for _, opt := range opts {
		opt(&options)
	}

	idx := &Index{
		entries: make(map[string]Record, len(records)),
		keys:    make([]string, 0, len(records)),
	}
	for pos, rec := range records {
		if strings.TrimSpace(rec.ID) == "" {
			malformed := &MalformedRecordError{Position: pos, Record: rec, Reason: "missing canonical identifier"}
			if options.onMalformed == nil {
				return nil, malformed
			}
			options.onMalformed(malformed)
			continue
		}
		key := textutil.NormalizeLabel(rec.ID)
		if _, exists := idx.entries[key]; !exists {
			idx.keys = append(idx.keys, key)
		}
		idx.entries[key] = rec.clone()
	}
	return idx, nil
}

// Lookup returns the record stored under the exact normalized key.
func (idx *Index) Lookup(key string) (Record, bool) {
	if idx == nil {
		return Record{}, false
	}
	rec, ok := idx.entries[key]
	return rec, ok
}

// ScanPrefix yields, in source order, every record whose normalized
// identifier starts with prefix. Each call starts a fresh scan.
func (idx *Index) ScanPrefix(prefix string) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		if idx == nil {
			return
		}
		for _, key := range idx.keys {
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			if !yield(idx.entries[key]) {
				return
			}
		}
	}
}

// Records yields every indexed record in source order.
func (idx *Index) Records() iter.Seq[Record] {
	return idx.ScanPrefix("")
}

// Len reports the number of distinct identifiers.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.keys)
}
