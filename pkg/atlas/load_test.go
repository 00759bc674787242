// ABOUTME: Tests for Loader's HTTP and local-file fetch paths
package atlas

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestLoaderLoadsLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".atlas.json")
	if err := os.WriteFile(path, []byte(`{"a":[["hi","f1",48000,"_"]]}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	loader := NewLoader()
	got, err := loader.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Items("a")) != 1 {
		t.Fatalf("expected one item, got %+v", got.Items("a"))
	}
}

func TestLoaderMissingLocalFileIsFetchError(t *testing.T) {
	loader := NewLoader()
	_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestLoaderFetchesOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"a":[["hi","f1",48000,"_"]]}`))
	}))
	defer srv.Close()

	loader := NewLoader()
	got, err := loader.Load(context.Background(), srv.URL+"/.atlas.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Items("a")) != 1 {
		t.Fatalf("expected one item, got %+v", got.Items("a"))
	}
}

func TestLoaderHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	loader := NewLoader()
	_, err := loader.Load(context.Background(), srv.URL+"/.atlas.json")
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestLoaderMalformedDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	loader := NewLoader()
	_, err := loader.Load(context.Background(), srv.URL+"/.atlas.json")
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}
