package acl

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/civiplan/submission-service/internal/domain"
)

func taxonomyHandler(t *testing.T, calls *atomic.Int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/api/v1/taxonomies/submissionProgressStatus/design" {
			w.Header().Set("Content-Type", "application/problem+json")
			w.WriteHeader(http.StatusNotFound)
			writeJSON(t, w, map[string]any{"detail": "taxonomy not found"})
			return
		}
		writeJSON(t, w, map[string]any{
			"group": "submissionProgressStatus",
			"code":  "design",
			"label": "Design",
			"properties": map[string]string{
				"authorizedNext": "preliminaryDraft,callForTender",
			},
		})
	}
}

func TestTaxonomyClient_Get(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	ts := httptest.NewServer(taxonomyHandler(t, &calls))
	defer ts.Close()

	client := NewTaxonomyClient(newTestClient(t, ts.URL), time.Minute, slog.Default())

	got, err := client.Get(context.Background(), "submissionProgressStatus", "design")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	if got.Code != "design" {
		t.Errorf("Code = %q, want %q", got.Code, "design")
	}
	if got.Properties["authorizedNext"] != "preliminaryDraft,callForTender" {
		t.Errorf("authorizedNext = %q", got.Properties["authorizedNext"])
	}
}

func TestTaxonomyClient_Get_CachesWithinTTL(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	ts := httptest.NewServer(taxonomyHandler(t, &calls))
	defer ts.Close()

	client := NewTaxonomyClient(newTestClient(t, ts.URL), time.Minute, slog.Default())
	ctx := context.Background()

	for range 3 {
		if _, err := client.Get(ctx, "submissionProgressStatus", "design"); err != nil {
			t.Fatalf("Get() error: %v", err)
		}
	}

	if calls.Load() != 1 {
		t.Errorf("downstream calls = %d, want 1 (cached)", calls.Load())
	}
}

func TestTaxonomyClient_Get_ExpiredEntryRefetches(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	ts := httptest.NewServer(taxonomyHandler(t, &calls))
	defer ts.Close()

	client := NewTaxonomyClient(newTestClient(t, ts.URL), time.Minute, slog.Default())
	ctx := context.Background()

	if _, err := client.Get(ctx, "submissionProgressStatus", "design"); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	// Advance the clock past the TTL.
	client.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := client.Get(ctx, "submissionProgressStatus", "design"); err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	if calls.Load() != 2 {
		t.Errorf("downstream calls = %d, want 2 (expired)", calls.Load())
	}
}

func TestTaxonomyClient_Get_ZeroTTLDisablesCache(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	ts := httptest.NewServer(taxonomyHandler(t, &calls))
	defer ts.Close()

	client := NewTaxonomyClient(newTestClient(t, ts.URL), 0, slog.Default())
	ctx := context.Background()

	for range 2 {
		if _, err := client.Get(ctx, "submissionProgressStatus", "design"); err != nil {
			t.Fatalf("Get() error: %v", err)
		}
	}

	if calls.Load() != 2 {
		t.Errorf("downstream calls = %d, want 2 (uncached)", calls.Load())
	}
}

func TestTaxonomyClient_Get_NotFound(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	ts := httptest.NewServer(taxonomyHandler(t, &calls))
	defer ts.Close()

	client := NewTaxonomyClient(newTestClient(t, ts.URL), time.Minute, slog.Default())

	_, err := client.Get(context.Background(), "submissionProgressStatus", "unknown")

	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
