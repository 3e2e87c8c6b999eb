// Package textutil provides the text normalization shared by the catalog,
// the resolver and catalog search.
//
// Catalog identifiers and classifier labels are compared after Unicode
// lowercasing (NormalizeLabel). Free-text search over display names also
// applies NFKC compatibility folding (Fold) so full-width and half-width
// forms compare equal.
package textutil
