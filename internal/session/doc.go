// Package session turns one classifier label into the payload presentation
// renders. It is the only place that interprets resolver results, so CLI and
// HTTP front ends never repeat matching logic.
package session
