// Package api serves pokedex over local HTTP.
//
// Routes:
//
//	POST /api/identify          multipart upload in the "image" field
//	GET  /api/resolve?label=    resolve a label without the classifier
//	GET  /api/catalog           catalog load status
//	GET  /api/catalog/records   catalog listing, optional ?q= and ?limit=
//	GET  /api/history           recent identifications, optional ?limit= and ?unresolved=1
//	GET  /metrics               Prometheus exposition
//	GET  /healthz               liveness
//
// Every response carries an X-Request-ID header; a caller-supplied value is
// kept. Errors are JSON objects of the form {"error": "..."}.
package api
