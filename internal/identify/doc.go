// Package identify runs one end-to-end identification: upload an image to the
// classifier, resolve the returned label against the current catalog, and
// record the outcome in history.
//
// Every call carries a request ID in its context so log lines, history rows,
// and API responses can be correlated. Failures are reported as *StageError
// naming the step that failed; an unmatched label is a successful outcome.
package identify
