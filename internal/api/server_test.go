package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pokedex/internal/api"
	"pokedex/internal/catalog"
	"pokedex/internal/classifier"
	"pokedex/internal/history"
	"pokedex/internal/identify"
	"pokedex/internal/metrics"
	"pokedex/internal/testsupport"
)

type catalogStub struct {
	idx *catalog.Index
	err error
}

func (c catalogStub) Current(context.Context) (*catalog.Index, error) { return c.idx, c.err }

func (c catalogStub) Status() (catalog.Status, bool) {
	if c.idx == nil {
		return catalog.Status{Path: "/tmp/missing.json"}, false
	}
	return catalog.Status{Path: "/tmp/pokemon.json", Records: c.idx.Len(), LoadedAt: time.Unix(0, 0)}, true
}

type historyStub struct {
	entries []history.Entry
	opts    history.ListOptions
}

func (h *historyStub) List(_ context.Context, opts history.ListOptions) ([]history.Entry, error) {
	h.opts = opts
	return h.entries, nil
}

func newTestServer(t *testing.T, cls classifier.Classifier, hist api.HistorySource) *httptest.Server {
	t.Helper()
	idx := testsupport.Catalog(t)
	svc, err := identify.New(identify.Options{Catalog: catalogStub{idx: idx}, Classifier: cls})
	if err != nil {
		t.Fatalf("identify.New failed: %v", err)
	}
	srv, err := api.New(api.Options{
		Identify: svc,
		Catalog:  catalogStub{idx: idx},
		History:  hist,
		Metrics:  metrics.New(),
	})
	if err != nil {
		t.Fatalf("api.New failed: %v", err)
	}
	server := httptest.NewServer(srv.Handler())
	t.Cleanup(server.Close)
	return server
}

func uploadImage(t *testing.T, url string, data []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "pika.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write(data)
	if err := writer.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	resp, err := http.Post(url+"/api/identify", writer.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("post identify: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := api.New(api.Options{}); err == nil {
		t.Fatal("expected error without identify service")
	}
}

func TestIdentifyEndpoint(t *testing.T) {
	cls := &testsupport.Classifier{Label: testsupport.Label("Pikachu"), Index: 24}
	server := newTestServer(t, cls, nil)

	resp := uploadImage(t, server.URL, []byte("png-bytes"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
	outcome := decode[identify.Outcome](t, resp)
	if outcome.Payload.Name != "皮卡丘" || !outcome.Payload.Resolved {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if outcome.RequestID != resp.Header.Get("X-Request-ID") {
		t.Fatalf("request id mismatch: body %q header %q", outcome.RequestID, resp.Header.Get("X-Request-ID"))
	}
	if string(cls.Uploaded()) != "png-bytes" {
		t.Fatalf("classifier saw %q", cls.Uploaded())
	}
}

func TestIdentifyEndpointErrors(t *testing.T) {
	// The real client enforces the image limit before any network call.
	sized, err := classifier.New("http://127.0.0.1:1", classifier.WithMaxImageBytes(8))
	if err != nil {
		t.Fatalf("classifier.New failed: %v", err)
	}
	tests := []struct {
		name  string
		cls   classifier.Classifier
		image []byte
		want  int
	}{
		{"non-string label", &testsupport.Classifier{}, []byte("img"), http.StatusUnprocessableEntity},
		{"classifier down", &testsupport.Classifier{Err: errors.New("connection refused")}, []byte("img"), http.StatusBadGateway},
		{"classifier status", &testsupport.Classifier{Err: &classifier.StatusError{StatusCode: 500}}, []byte("img"), http.StatusBadGateway},
		{"empty image", sized, nil, http.StatusBadRequest},
		{"image over limit", sized, bytes.Repeat([]byte("x"), 16), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, tt.cls, nil)
			resp := uploadImage(t, server.URL, tt.image)
			if resp.StatusCode != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.StatusCode)
			}
			body := decode[api.ErrorResponse](t, resp)
			if body.Error == "" || body.RequestID == "" {
				t.Fatalf("expected error body with request id, got %+v", body)
			}
		})
	}
}

func TestIdentifyEndpointRequiresImage(t *testing.T) {
	cls := &testsupport.Classifier{Label: testsupport.Label("Pikachu")}
	server := newTestServer(t, cls, nil)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("note", "no image")
	_ = writer.Close()
	resp, err := http.Post(server.URL+"/api/identify", writer.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("post identify: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if cls.CallCount() != 0 {
		t.Fatal("classifier must not be called without an image")
	}

	getResp, err := http.Get(server.URL + "/api/identify")
	if err != nil {
		t.Fatalf("get identify: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", getResp.StatusCode)
	}
}

func TestResolveEndpoint(t *testing.T) {
	server := newTestServer(t, nil, nil)

	resp, err := http.Get(server.URL + "/api/resolve?label=charizard-gmax")
	if err != nil {
		t.Fatalf("get resolve: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	outcome := decode[identify.Outcome](t, resp)
	if outcome.Payload.Label != "charizard-mega" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}

	missing, err := http.Get(server.URL + "/api/resolve")
	if err != nil {
		t.Fatalf("get resolve: %v", err)
	}
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without label, got %d", missing.StatusCode)
	}
}

func TestResolveKeepsCallerRequestID(t *testing.T) {
	server := newTestServer(t, nil, nil)
	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/resolve?label=unknownmon", nil)
	req.Header.Set("X-Request-ID", "caller-id")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	defer resp.Body.Close()
	outcome := decode[identify.Outcome](t, resp)
	if outcome.RequestID != "caller-id" || resp.Header.Get("X-Request-ID") != "caller-id" {
		t.Fatalf("expected caller request id, got body %q header %q", outcome.RequestID, resp.Header.Get("X-Request-ID"))
	}
	if outcome.Payload.Resolved || outcome.Payload.Label != "unknownmon" {
		t.Fatalf("unexpected payload %+v", outcome.Payload)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	server := newTestServer(t, nil, nil)

	resp, err := http.Get(server.URL + "/api/catalog")
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	defer resp.Body.Close()
	status := decode[api.CatalogStatusResponse](t, resp)
	if !status.Loaded || status.Status.Records != 3 {
		t.Fatalf("unexpected status %+v", status)
	}

	recResp, err := http.Get(server.URL + "/api/catalog/records?q=chari&limit=1")
	if err != nil {
		t.Fatalf("get records: %v", err)
	}
	defer recResp.Body.Close()
	records := decode[api.CatalogRecordsResponse](t, recResp)
	if records.Total != 2 || len(records.Records) != 1 || records.Records[0].ID != "charizard-mega" {
		t.Fatalf("unexpected records %+v", records)
	}

	bad, err := http.Get(server.URL + "/api/catalog/records?limit=zero")
	if err != nil {
		t.Fatalf("get records: %v", err)
	}
	defer bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", bad.StatusCode)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	disabled := newTestServer(t, nil, nil)
	resp, err := http.Get(disabled.URL + "/api/history")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 when history disabled, got %d", resp.StatusCode)
	}

	hist := &historyStub{entries: []history.Entry{{ID: "a", Label: "Pikachu", Resolved: true}}}
	server := newTestServer(t, nil, hist)
	resp, err = http.Get(server.URL + "/api/history?limit=5&unresolved=true")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	defer resp.Body.Close()
	body := decode[api.HistoryResponse](t, resp)
	if len(body.Entries) != 1 || body.Entries[0].ID != "a" {
		t.Fatalf("unexpected entries %+v", body.Entries)
	}
	if hist.opts.Limit != 5 || !hist.opts.UnresolvedOnly {
		t.Fatalf("unexpected list options %+v", hist.opts)
	}
}

func TestMetricsAndHealth(t *testing.T) {
	server := newTestServer(t, nil, nil)

	resolve, err := http.Get(server.URL + "/api/resolve?label=pikachu")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	resolve.Body.Close()

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), "pokedex_resolver_resolutions_total") {
		t.Fatalf("unexpected metrics response %d: %s", resp.StatusCode, data)
	}

	health, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	defer health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", health.StatusCode)
	}
}

func TestStartServesUntilCancelled(t *testing.T) {
	idx := testsupport.Catalog(t)
	svc, err := identify.New(identify.Options{Catalog: catalogStub{idx: idx}})
	if err != nil {
		t.Fatalf("identify.New failed: %v", err)
	}
	srv, err := api.New(api.Options{Bind: "127.0.0.1:0", Identify: svc, Catalog: catalogStub{idx: idx}})
	if err != nil {
		t.Fatalf("api.New failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
