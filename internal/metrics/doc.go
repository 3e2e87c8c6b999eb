// Package metrics defines the Prometheus instruments pokedex exports and the
// registry they live in. A nil *Metrics is valid and records nothing.
package metrics
