package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	predictPath          = "/predict"
	imageField           = "image"
	defaultMaxImageBytes = 10 << 20
	maxResponseBytes     = 1 << 20
	maxErrorMessage      = 200
)

var (
	// ErrEmptyImage is returned when the upload contains no bytes.
	ErrEmptyImage = errors.New("classifier: image is empty")
	// ErrImageTooLarge is returned when the upload exceeds the configured limit.
	ErrImageTooLarge = errors.New("classifier: image exceeds size limit")
)

// Prediction is the classifier's answer for one image.
type Prediction struct {
	Index int
	// Label is nil when the service omitted predicted_label or sent a
	// non-string value.
	Label   *string
	Latency time.Duration
}

// StatusError reports a non-200 reply from the classifier.
type StatusError struct {
	StatusCode int
	Message    string
	Latency    time.Duration
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("classifier returned %d (latency=%v)", e.StatusCode, e.Latency)
	}
	return fmt.Sprintf("classifier returned %d: %s (latency=%v)", e.StatusCode, e.Message, e.Latency)
}

// Classifier predicts a label for an image.
type Classifier interface {
	Predict(ctx context.Context, filename string, image io.Reader) (Prediction, error)
}

// Client talks to the classification service over HTTP.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	maxImageBytes int64
}

var _ Classifier = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithMaxImageBytes limits the size of uploaded images.
func WithMaxImageBytes(limit int64) Option {
	return func(c *Client) {
		if limit > 0 {
			c.maxImageBytes = limit
		}
	}
}

// New creates a classifier client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("classifier base url required")
	}
	client := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		maxImageBytes: defaultMaxImageBytes,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// PredictFile uploads the image stored at path.
func (c *Client) PredictFile(ctx context.Context, path string) (Prediction, error) {
	file, err := os.Open(path)
	if err != nil {
		return Prediction{}, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()
	return c.Predict(ctx, filepath.Base(path), file)
}

// Predict uploads image as a multipart form and decodes the prediction.
func (c *Client) Predict(ctx context.Context, filename string, image io.Reader) (Prediction, error) {
	data, err := io.ReadAll(io.LimitReader(image, c.maxImageBytes+1))
	if err != nil {
		return Prediction{}, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return Prediction{}, ErrEmptyImage
	}
	if int64(len(data)) > c.maxImageBytes {
		return Prediction{}, fmt.Errorf("%w (%d bytes)", ErrImageTooLarge, c.maxImageBytes)
	}

	body, contentType, err := encodeImage(filename, data)
	if err != nil {
		return Prediction{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, body)
	if err != nil {
		return Prediction{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return Prediction{}, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Prediction{}, fmt.Errorf("read response (latency=%v): %w", latency, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Prediction{}, &StatusError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(payload),
			Latency:    latency,
		}
	}
	prediction, err := decodePrediction(payload)
	if err != nil {
		return Prediction{}, fmt.Errorf("decode response (latency=%v): %w", latency, err)
	}
	prediction.Latency = latency
	return prediction, nil
}

// Ping checks that the service answers on /predict by posting a form with no
// image. The service rejects it with 400, which counts as reachable; only
// transport failures and 5xx replies are reported.
func (c *Client) Ping(ctx context.Context) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close form: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, &body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusNotFound {
		return &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(payload), Latency: latency}
	}
	return nil
}

func encodeImage(filename string, data []byte) (*bytes.Buffer, string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		filename = "image"
	}
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, imageField, filename))
	header.Set("Content-Type", http.DetectContentType(data))
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("write form part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &body, writer.FormDataContentType(), nil
}

type predictResponse struct {
	PredictedIndex int             `json:"predicted_index"`
	PredictedLabel json.RawMessage `json:"predicted_label"`
}

func decodePrediction(payload []byte) (Prediction, error) {
	var resp predictResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return Prediction{}, err
	}
	prediction := Prediction{Index: resp.PredictedIndex}
	raw := bytes.TrimSpace(resp.PredictedLabel)
	if len(raw) == 0 || raw[0] != '"' {
		return prediction, nil
	}
	var label string
	if err := json.Unmarshal(raw, &label); err != nil {
		return Prediction{}, fmt.Errorf("predicted_label: %w", err)
	}
	prediction.Label = &label
	return prediction, nil
}

func errorMessage(payload []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return truncate(strings.TrimSpace(string(payload)), maxErrorMessage)
}

// truncate shortens s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
