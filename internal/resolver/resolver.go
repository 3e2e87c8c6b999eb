package resolver

import (
	"pokedex/internal/catalog"
	"pokedex/internal/textutil"
)

// Result is either Matched or Unmatched.
type Result interface {
	isResult()
}

// Matched carries the catalog record a label resolved to.
type Matched struct {
	Record catalog.Record
}

// Unmatched carries the original label when no record matched.
type Unmatched struct {
	RawLabel string
}

func (Matched) isResult()   {}
func (Unmatched) isResult() {}

// Rule names the resolution step that produced a Result.
type Rule string

const (
	RuleExact  Rule = "exact"
	RulePrefix Rule = "prefix"
	RuleNone   Rule = "none"
)

// Resolve maps rawLabel to a record in idx.
func Resolve(idx *catalog.Index, rawLabel string) Result {
	result, _ := Explain(idx, rawLabel)
	return result
}

// Explain resolves rawLabel like Resolve and also reports which rule fired.
// The rule is diagnostic only.
func Explain(idx *catalog.Index, rawLabel string) (Result, Rule) {
	normalized := textutil.NormalizeLabel(rawLabel)
	if rec, ok := idx.Lookup(normalized); ok {
		return Matched{Record: rec}, RuleExact
	}
	for rec := range idx.ScanPrefix(textutil.BaseName(normalized)) {
		return Matched{Record: rec}, RulePrefix
	}
	return Unmatched{RawLabel: rawLabel}, RuleNone
}
