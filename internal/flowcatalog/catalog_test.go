package flowcatalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubSource struct {
	entries map[string]CategoryFlowConfig
	err     error
	fetches int
}

func (s *stubSource) Fetch(ctx context.Context) (map[string]CategoryFlowConfig, error) {
	s.fetches++
	if s.err != nil {
		return nil, s.err
	}
	return s.entries, nil
}

func TestCatalogCachesSuccessfulFetch(t *testing.T) {
	t.Parallel()

	source := &stubSource{entries: map[string]CategoryFlowConfig{
		"flower": {Question: "How do you source your flower?", Options: []CategoryFlowOption{{Key: "grow_own"}}},
	}}
	catalog, err := NewCatalog(source)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := catalog.Load(context.Background()); err != nil {
			t.Fatalf("Load %d: %v", i, err)
		}
	}
	if source.fetches != 1 {
		t.Fatalf("expected one fetch, got %d", source.fetches)
	}

	option, ok := catalog.Option("flower", "grow_own")
	if !ok || option.Key != "grow_own" {
		t.Fatalf("cached option not served: %+v ok=%v", option, ok)
	}
}

func TestCatalogRetriesAfterFailedFetch(t *testing.T) {
	t.Parallel()

	source := &stubSource{err: errors.New("catalog down")}
	catalog, _ := NewCatalog(source)

	if err := catalog.Load(context.Background()); err == nil {
		t.Fatalf("expected load failure")
	}

	source.err = nil
	source.entries = map[string]CategoryFlowConfig{"flower": {Question: "q"}}
	if err := catalog.Load(context.Background()); err != nil {
		t.Fatalf("Load after recovery: %v", err)
	}
	if source.fetches != 2 {
		t.Fatalf("expected a retry fetch, got %d", source.fetches)
	}
	if _, ok := catalog.Lookup("flower"); !ok {
		t.Fatalf("entries not served after recovery")
	}
}

func TestCatalogUnknownCategoryIsNotAnError(t *testing.T) {
	t.Parallel()

	source := &stubSource{entries: map[string]CategoryFlowConfig{}}
	catalog, _ := NewCatalog(source)
	if err := catalog.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, ok := catalog.Lookup("accessories"); ok {
		t.Fatalf("unknown category must report not found")
	}
	if _, ok := catalog.Option("accessories", "any"); ok {
		t.Fatalf("unknown category option must report not found")
	}
}

func TestHTTPSourceFetchesCategoryFlows(t *testing.T) {
	t.Parallel()

	payload := map[string]CategoryFlowConfig{
		"flower": {
			Question: "How do you source your flower?",
			Options:  []CategoryFlowOption{{Key: "grow_own", CanProduce: true, NeedsPartnerships: true, PartnerType: "processor"}},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/category-flows" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	source, err := NewHTTPSource(server.URL, 0)
	if err != nil {
		t.Fatalf("NewHTTPSource: %v", err)
	}

	entries, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	flower, ok := entries["flower"]
	if !ok || len(flower.Options) != 1 || !flower.Options[0].CanProduce {
		t.Fatalf("payload not decoded: %+v", entries)
	}
}

func TestHTTPSourceSurfacesUpstreamErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	source, err := NewHTTPSource(server.URL, 0)
	if err != nil {
		t.Fatalf("NewHTTPSource: %v", err)
	}

	if _, err := source.Fetch(context.Background()); err == nil {
		t.Fatalf("expected dependency error from upstream failure")
	}
}
