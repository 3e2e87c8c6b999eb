package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"pokedex/internal/preflight"
	"pokedex/internal/testsupport"
)

func TestCheckCommandPasses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)
	env := setupCLITestEnv(t, testsupport.WithSampleCatalog(), testsupport.WithClassifierURL(srv.URL))

	out, _, err := runCLI(t, env.configPath, "check")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "Catalog:")
	requireContains(t, out, "[OK]")
	requireNotContains(t, out, "[ERROR]")
}

func TestCheckCommandReportsFailures(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "check", "--json")
	if err == nil {
		t.Fatal("expected failure without catalog or classifier")
	}
	results := decodeOutput[[]preflight.Result](t, out)
	if preflight.Failed(results) != 2 {
		t.Fatalf("expected catalog and classifier failures, got %+v", results)
	}
}
