// Package main hosts the pokedex CLI entrypoint and command graph.
//
// The Cobra command tree identifies images through the classifier service,
// resolves labels against the species catalog, inspects the catalog and the
// prediction history, runs the local HTTP API, and scaffolds configuration.
// Wiring (configuration, logging, catalog store, classifier client, history
// database) is centralized in commandContext so commands only deal with
// presentation.
package main
