// Package catalog owns the species catalog: the Record value, the immutable
// Index built from a catalog source, and the Store that loads, refreshes and
// atomically swaps indexes at runtime.
//
// An Index is keyed by the lowercase form of each record's canonical
// identifier. It is never patched in place; every reload builds a new Index
// and the Store publishes it with a single pointer swap, so readers holding an
// older Index keep a consistent view for as long as they need it.
//
// Catalog documents are JSON arrays of records (or an object wrapping the
// array under "pokemon"). Records without an identifier are rejected by Build
// with a MalformedRecordError unless the caller opts into skipping them.
package catalog
