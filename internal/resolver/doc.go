// Package resolver turns a raw classifier label into a catalog record.
//
// Resolution applies two rules in order and stops at the first hit:
//
//  1. exact: the lowercase label is a catalog key;
//  2. prefix: the lowercase label cut at its first hyphen (the base name)
//     prefixes a catalog key. The first such key in catalog order wins;
//     there is no ranking by similarity.
//
// Anything else is Unmatched, carrying the label exactly as received. An
// empty label has an empty base name, which prefixes every key, so it
// resolves to the first catalog record whenever the catalog is non-empty.
//
// Resolve is pure and total: it performs no I/O, never fails, and is safe to
// call concurrently against a shared *catalog.Index.
package resolver
