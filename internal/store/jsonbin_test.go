package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONBinFetchUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/b/bin1/latest" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Master-Key") != "master" {
			t.Errorf("missing master key header")
		}
		w.Write([]byte(`{"record": {"servers": {"999": {"verified_users": ["42"], "tokens": {"42": "xyz"}}}}}`))
	}))
	defer srv.Close()

	backend := NewJSONBinBackend(srv.URL, "bin1", "master")
	raw, err := backend.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	store, err := decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if store.Servers["999"].Tokens["42"] != "xyz" {
		t.Errorf("document not unwrapped correctly: %v", store.Servers)
	}
}

func TestJSONBinFetchErrorsWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"servers": {}}`))
	}))
	defer srv.Close()

	backend := NewJSONBinBackend(srv.URL, "bin1", "master")
	if _, err := backend.Fetch(context.Background()); err == nil {
		t.Fatal("expected envelope error")
	}
}

func TestJSONBinFetchErrorsOnRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	backend := NewJSONBinBackend(srv.URL, "bin1", "wrong")
	if _, err := backend.Fetch(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}
}

func TestJSONBinPutSendsDocument(t *testing.T) {
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/b/bin1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		received, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	backend := NewJSONBinBackend(srv.URL, "bin1", "master")
	doc := []byte(`{"servers":{"999":{"verified_users":["42"],"tokens":{"42":"xyz"}}}}`)
	if err := backend.Put(context.Background(), doc); err != nil {
		t.Fatalf("put: %v", err)
	}

	var got, want any
	json.Unmarshal(received, &got)
	json.Unmarshal(doc, &want)
	if got == nil {
		t.Fatal("no body received")
	}
}
