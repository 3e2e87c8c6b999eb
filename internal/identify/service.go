package identify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"pokedex/internal/catalog"
	"pokedex/internal/classifier"
	"pokedex/internal/history"
	"pokedex/internal/logging"
	"pokedex/internal/metrics"
	"pokedex/internal/resolver"
	"pokedex/internal/session"
)

// Stages reported in StageError and metrics.
const (
	StageInput      = "input"
	StageCatalog    = "catalog"
	StageClassifier = "classifier"
	StageSession    = "session"
)

// ErrImageRequired is returned before any network call when no image was given.
var ErrImageRequired = errors.New("identify: image path required")

// StageError wraps a failure with the step that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// CatalogSource yields the catalog index to resolve against.
type CatalogSource interface {
	Current(ctx context.Context) (*catalog.Index, error)
}

// Recorder persists identification outcomes.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) (history.Entry, error)
}

// Outcome is the result of one identification or label resolution.
type Outcome struct {
	RequestID      string           `json:"request_id"`
	Image          string           `json:"image,omitempty"`
	PredictedIndex *int             `json:"predicted_index,omitempty"`
	RawLabel       string           `json:"raw_label"`
	Payload        session.Payload  `json:"result"`
	Details        *session.Details `json:"details,omitempty"`
	Rule           resolver.Rule    `json:"-"`
}

// Options wires a Service. Catalog is required; Classifier is required for
// Identify. History, Metrics, and Logger are optional.
type Options struct {
	Catalog    CatalogSource
	Classifier classifier.Classifier
	History    Recorder
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// Service coordinates classifier, catalog, and history.
type Service struct {
	catalog    CatalogSource
	classifier classifier.Classifier
	history    Recorder
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// New validates opts and returns a Service.
func New(opts Options) (*Service, error) {
	if opts.Catalog == nil {
		return nil, errors.New("identify: catalog source required")
	}
	return &Service{
		catalog:    opts.Catalog,
		classifier: opts.Classifier,
		history:    opts.History,
		metrics:    opts.Metrics,
		logger:     logging.NewComponentLogger(opts.Logger, "identify"),
	}, nil
}

// IdentifyFile opens the image at path and identifies it.
func (s *Service) IdentifyFile(ctx context.Context, path string) (Outcome, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		s.metrics.ObserveError(StageInput)
		return Outcome{}, &StageError{Stage: StageInput, Err: ErrImageRequired}
	}
	file, err := os.Open(path)
	if err != nil {
		s.metrics.ObserveError(StageInput)
		return Outcome{}, &StageError{Stage: StageInput, Err: fmt.Errorf("open image: %w", err)}
	}
	defer file.Close()
	return s.Identify(ctx, filepath.Base(path), file)
}

// Identify uploads image to the classifier and resolves the predicted label.
func (s *Service) Identify(ctx context.Context, filename string, image io.Reader) (Outcome, error) {
	if image == nil {
		s.metrics.ObserveError(StageInput)
		return Outcome{}, &StageError{Stage: StageInput, Err: ErrImageRequired}
	}
	if s.classifier == nil {
		return Outcome{}, &StageError{Stage: StageClassifier, Err: errors.New("classifier not configured")}
	}
	ctx, requestID := withRequestID(ctx)
	logger := logging.WithContext(ctx, s.logger)
	entry := history.Entry{ID: requestID, Image: filename}

	idx, err := s.catalog.Current(ctx)
	if err != nil {
		return Outcome{}, s.fail(ctx, entry, StageCatalog, err)
	}

	start := time.Now()
	prediction, err := s.classifier.Predict(ctx, filename, image)
	s.metrics.ObserveClassifier(time.Since(start), err)
	if err != nil {
		stage := StageClassifier
		if errors.Is(err, classifier.ErrEmptyImage) || errors.Is(err, classifier.ErrImageTooLarge) {
			stage = StageInput
		}
		return Outcome{}, s.fail(ctx, entry, stage, err)
	}
	entry.PredictedIndex = prediction.Index
	entry.RawLabel = prediction.Label

	outcome, err := s.resolve(idx, prediction.Label)
	if err != nil {
		return Outcome{}, s.fail(ctx, entry, StageSession, err)
	}
	outcome.RequestID = requestID
	outcome.Image = filename
	predictedIndex := prediction.Index
	outcome.PredictedIndex = &predictedIndex

	entry.Name = outcome.Payload.Name
	entry.Label = outcome.Payload.Label
	entry.Resolved = outcome.Payload.Resolved
	entry.Rule = string(outcome.Rule)
	s.record(ctx, entry)

	logger.Info("image identified",
		logging.String("image", filename),
		logging.String(logging.FieldLabel, outcome.RawLabel),
		logging.String("name", outcome.Payload.Name),
		logging.String(logging.FieldRule, string(outcome.Rule)),
		logging.Duration("classifier_latency", prediction.Latency),
	)
	return outcome, nil
}

// ResolveLabel resolves a label without calling the classifier. Nothing is
// recorded in history.
func (s *Service) ResolveLabel(ctx context.Context, label string) (Outcome, error) {
	ctx, requestID := withRequestID(ctx)
	idx, err := s.catalog.Current(ctx)
	if err != nil {
		s.metrics.ObserveError(StageCatalog)
		return Outcome{}, &StageError{Stage: StageCatalog, Err: err}
	}
	outcome, err := s.resolve(idx, &label)
	if err != nil {
		s.metrics.ObserveError(StageSession)
		return Outcome{}, &StageError{Stage: StageSession, Err: err}
	}
	outcome.RequestID = requestID
	logging.WithContext(ctx, s.logger).Debug("label resolved",
		logging.String(logging.FieldLabel, label),
		logging.String(logging.FieldRule, string(outcome.Rule)),
	)
	return outcome, nil
}

func (s *Service) resolve(idx *catalog.Index, label *string) (Outcome, error) {
	payload, err := session.Submit(idx, label)
	if err != nil {
		return Outcome{}, err
	}
	_, rule := resolver.Explain(idx, *label)
	s.metrics.ObserveResolution(string(rule), payload.Resolved)

	outcome := Outcome{RawLabel: *label, Payload: payload, Rule: rule}
	if details, ok := session.LookupDetails(idx, payload); ok {
		outcome.Details = &details
	}
	return outcome, nil
}

func (s *Service) fail(ctx context.Context, entry history.Entry, stage string, err error) error {
	s.metrics.ObserveError(stage)
	entry.Error = err.Error()
	s.record(ctx, entry)
	logging.ErrorWithContext(logging.WithContext(ctx, s.logger), "identification failed", "identify_failed",
		logging.String("stage", stage),
		logging.String("image", entry.Image),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hintFor(stage)),
	)
	return &StageError{Stage: stage, Err: err}
}

func (s *Service) record(ctx context.Context, entry history.Entry) {
	if s.history == nil {
		return
	}
	if _, err := s.history.Record(ctx, entry); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "history write failed", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check history.path permissions"),
			logging.String(logging.FieldImpact, "this identification is missing from history"),
		)
	}
}

func hintFor(stage string) string {
	switch stage {
	case StageCatalog:
		return "check catalog.path or catalog.download_url"
	case StageClassifier:
		return "check classifier.base_url and that the service is running"
	case StageSession:
		return "the classifier returned no usable label"
	case StageInput:
		return "upload a non-empty image within classifier.max_image_mb"
	default:
		return "check logs for details"
	}
}

func withRequestID(ctx context.Context) (context.Context, string) {
	if id, ok := logging.RequestIDFromContext(ctx); ok {
		return ctx, id
	}
	id := uuid.NewString()
	return logging.WithRequestID(ctx, id), id
}
