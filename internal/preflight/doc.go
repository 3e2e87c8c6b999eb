// Package preflight provides readiness checks for the directories, catalog
// document, and classifier service that pokedex depends on.
//
// The CLI "pokedex check" command runs RunAll and prints one line per
// result. Checks never modify state: a missing catalog with a download URL
// configured passes because the next lookup fetches it.
package preflight
