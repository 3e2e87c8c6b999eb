package api

import (
	"pokedex/internal/catalog"
	"pokedex/internal/history"
)

// CatalogStatusResponse reports whether a catalog is loaded and its details.
type CatalogStatusResponse struct {
	Loaded bool           `json:"loaded"`
	Status catalog.Status `json:"status"`
	Error  string         `json:"error,omitempty"`
}

// CatalogRecordsResponse lists catalog records.
type CatalogRecordsResponse struct {
	Records []catalog.Record `json:"records"`
	Total   int              `json:"total"`
}

// HistoryResponse lists recorded identifications, newest first.
type HistoryResponse struct {
	Entries []history.Entry `json:"entries"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
