package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"pokedex/internal/catalog"
	"pokedex/internal/classifier"
	"pokedex/internal/history"
	"pokedex/internal/identify"
	"pokedex/internal/logging"
	"pokedex/internal/metrics"
	"pokedex/internal/session"
)

const (
	requestIDHeader       = "X-Request-ID"
	defaultMaxUploadBytes = 10 << 20
	defaultRecordLimit    = 100
	defaultHistoryLimit   = 50
	maxListLimit          = 1000
)

// CatalogSource exposes the published catalog and its status.
type CatalogSource interface {
	Current(ctx context.Context) (*catalog.Index, error)
	Status() (catalog.Status, bool)
}

// HistorySource lists recorded identifications.
type HistorySource interface {
	List(ctx context.Context, opts history.ListOptions) ([]history.Entry, error)
}

// Options wires a Server. Identify and Catalog are required.
type Options struct {
	Bind           string
	Identify       *identify.Service
	Catalog        CatalogSource
	History        HistorySource
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	MaxUploadBytes int64
}

// Server is the local HTTP API.
type Server struct {
	bind      string
	identify  *identify.Service
	catalog   CatalogSource
	history   HistorySource
	metrics   *metrics.Metrics
	logger    *slog.Logger
	maxUpload int64

	handler  http.Handler
	server   *http.Server
	listener net.Listener
}

// New builds the server and its routes. Nothing listens until Start.
func New(opts Options) (*Server, error) {
	if opts.Identify == nil {
		return nil, errors.New("api: identify service required")
	}
	if opts.Catalog == nil {
		return nil, errors.New("api: catalog source required")
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	srv := &Server{
		bind:      strings.TrimSpace(opts.Bind),
		identify:  opts.Identify,
		catalog:   opts.Catalog,
		history:   opts.History,
		metrics:   opts.Metrics,
		logger:    logging.NewComponentLogger(opts.Logger, "api"),
		maxUpload: maxUpload,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/identify", srv.handleIdentify)
	mux.HandleFunc("/api/resolve", srv.handleResolve)
	mux.HandleFunc("/api/catalog", srv.handleCatalog)
	mux.HandleFunc("/api/catalog/records", srv.handleCatalogRecords)
	mux.HandleFunc("/api/history", srv.handleHistory)
	mux.Handle("/metrics", opts.Metrics.Handler())
	mux.HandleFunc("/healthz", srv.handleHealth)
	srv.handler = srv.withRequestID(mux)

	srv.server = &http.Server{
		Handler:           srv.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listening address once Start succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start listens on the configured bind address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api: bind address required")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := logging.WithRequestID(r.Context(), id)
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		s.logger.DebugContext(ctx, "api request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+1<<20)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge, "image too large")
			return
		}
		s.writeError(w, r, http.StatusBadRequest, "expected multipart form with an image field")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()
	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, identify.ErrImageRequired.Error())
		return
	}
	defer file.Close()

	outcome, err := s.identify.Identify(r.Context(), header.Filename, file)
	if err != nil {
		s.writeError(w, r, statusFor(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()
	if !query.Has("label") {
		s.writeError(w, r, http.StatusBadRequest, "label query parameter required")
		return
	}
	outcome, err := s.identify.ResolveLabel(r.Context(), query.Get("label"))
	if err != nil {
		s.writeError(w, r, statusFor(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	resp := CatalogStatusResponse{}
	if _, err := s.catalog.Current(r.Context()); err != nil {
		resp.Error = err.Error()
	}
	resp.Status, resp.Loaded = s.catalog.Status()
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCatalogRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"), defaultRecordLimit)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	idx, err := s.catalog.Current(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusServiceUnavailable, err.Error())
		return
	}
	resp := CatalogRecordsResponse{Records: []catalog.Record{}}
	for rec := range idx.Search(r.URL.Query().Get("q")) {
		resp.Total++
		if len(resp.Records) < limit {
			resp.Records = append(resp.Records, rec)
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.history == nil {
		s.writeError(w, r, http.StatusNotFound, "history disabled")
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"), defaultHistoryLimit)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	unresolved, _ := strconv.ParseBool(r.URL.Query().Get("unresolved"))
	entries, err := s.history.List(r.Context(), history.ListOptions{Limit: limit, UnresolvedOnly: unresolved})
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	s.writeJSON(w, http.StatusOK, HistoryResponse{Entries: entries})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps identification failures to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, classifier.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	var stageErr *identify.StageError
	if errors.As(err, &stageErr) {
		switch stageErr.Stage {
		case identify.StageInput:
			return http.StatusBadRequest
		case identify.StageClassifier:
			return http.StatusBadGateway
		case identify.StageCatalog:
			return http.StatusServiceUnavailable
		}
	}
	return http.StatusInternalServerError
}

func parseLimit(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	return min(limit, maxListLimit), nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	requestID, _ := logging.RequestIDFromContext(r.Context())
	s.writeJSON(w, status, ErrorResponse{Error: message, RequestID: requestID})
}
