// Package config reads the pokedex TOML configuration.
//
// Load resolves the file location, overlays it on Default, fills empty
// classifier and catalog URLs from POKEDEX_CLASSIFIER_URL and
// POKEDEX_CATALOG_URL, expands ~ in every path and validates the result.
// Unknown keys are errors. CreateSample writes the annotated template used by
// `pokedex config init`.
package config
