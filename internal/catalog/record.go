package catalog

import "slices"

// Record is a single species entry. Records are read-only once an Index has
// been built from them.
type Record struct {
	Name       string   `json:"name"`
	ID         string   `json:"name_en"`
	AltName    string   `json:"name_jp,omitempty"`
	Generation string   `json:"generation,omitempty"`
	Types      []string `json:"types,omitempty"`
	Number     string   `json:"index,omitempty"`
}

func (r Record) clone() Record {
	r.Types = slices.Clone(r.Types)
	return r
}
