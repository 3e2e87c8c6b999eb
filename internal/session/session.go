package session

import (
	"errors"

	"pokedex/internal/catalog"
	"pokedex/internal/resolver"
	"pokedex/internal/textutil"
)

// UnknownName is displayed when a label resolves to no catalog record.
const UnknownName = "未知寶可夢"

// ErrInvalidInput reports an absent or non-string classifier label.
var ErrInvalidInput = errors.New("invalid input: classifier label missing or not a string")

// Payload is the display-ready outcome of one submission.
type Payload struct {
	// Name is the record's primary display name, or UnknownName.
	Name string `json:"name"`
	// Label is the resolved canonical identifier, or the raw label verbatim
	// when unresolved.
	Label string `json:"label"`
	// Resolved is false when optional fields must not be rendered.
	Resolved bool `json:"resolved"`
}

// Details are the optional record fields shown for resolved payloads.
type Details struct {
	AltName    string   `json:"alt_name,omitempty"`
	Generation string   `json:"generation,omitempty"`
	Types      []string `json:"types,omitempty"`
	Number     string   `json:"number,omitempty"`
}

// Submit resolves rawLabel against idx. A nil rawLabel yields
// ErrInvalidInput; an unmatched label is not an error.
func Submit(idx *catalog.Index, rawLabel *string) (Payload, error) {
	if rawLabel == nil {
		return Payload{}, ErrInvalidInput
	}
	switch result := resolver.Resolve(idx, *rawLabel).(type) {
	case resolver.Matched:
		return Payload{Name: result.Record.Name, Label: result.Record.ID, Resolved: true}, nil
	case resolver.Unmatched:
		return Payload{Name: UnknownName, Label: result.RawLabel}, nil
	default:
		return Payload{Name: UnknownName, Label: *rawLabel}, nil
	}
}

// LookupDetails looks up the optional fields for a resolved payload by its
// canonical identifier. It reports false for unresolved payloads and for
// identifiers no longer present in idx.
func LookupDetails(idx *catalog.Index, p Payload) (Details, bool) {
	if !p.Resolved {
		return Details{}, false
	}
	rec, ok := idx.Lookup(textutil.NormalizeLabel(p.Label))
	if !ok {
		return Details{}, false
	}
	return Details{
		AltName:    rec.AltName,
		Generation: rec.Generation,
		Types:      rec.Types,
		Number:     rec.Number,
	}, true
}
