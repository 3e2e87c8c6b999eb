// Package history persists one row per identification attempt in SQLite.
//
// Each entry records the request ID, the uploaded image name, the classifier's
// raw answer, and the display payload the session produced (or the error that
// stopped it). Schema changes ship as embedded migrations applied on Open.
package history
