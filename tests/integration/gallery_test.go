// Package integration exercises the fully wired service: real provider
// client against the mock upstream, real Redis-backed store, real controller
// and HTTP surface.
package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/artgrid/gallery-proxy/internal/testutil"
	"github.com/artgrid/gallery-proxy/pkg/cache"
	"github.com/artgrid/gallery-proxy/pkg/gallery"
	"github.com/artgrid/gallery-proxy/pkg/normalize"
	"github.com/artgrid/gallery-proxy/pkg/provider"
	"github.com/artgrid/gallery-proxy/pkg/server"
)

const apiKey = "integration-secret"

type envelope struct {
	Images     []normalize.NormalizedImage `json:"images"`
	Pagination gallery.Pagination          `json:"pagination"`
}

type harness struct {
	srv      http.Handler
	upstream *testutil.MockProvider
}

func setupHarness(t *testing.T, resources []provider.RawResource, cfg gallery.Config) *harness {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	upstream := testutil.NewMockProvider()
	t.Cleanup(upstream.Close)
	upstream.SetListing(resources)

	providerClient, err := provider.New(provider.Config{
		Key:     "k",
		Secret:  "s",
		BaseURL: upstream.URL(),
	}, nil)
	if err != nil {
		t.Fatalf("provider.New failed: %v", err)
	}

	if cfg.Folder == "" {
		cfg.Folder = "gallery"
	}
	controller := gallery.NewController(
		cache.NewStore(redisClient),
		providerClient,
		normalize.New(providerClient, normalize.ModeStrict),
		cfg,
	)

	srv := server.New(
		server.Config{APISecret: apiKey},
		server.NewGalleryHandler(controller),
	)

	return &harness{srv: srv, upstream: upstream}
}

func (h *harness) get(t *testing.T, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("X-API-Key", apiKey)
	rec := httptest.NewRecorder()
	h.srv.ServeHTTP(rec, req)

	var body envelope
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return rec, body
}

func makeResources(n int) []provider.RawResource {
	resources := make([]provider.RawResource, n)
	for i := range resources {
		resources[i] = provider.RawResource{
			AssetID:   fmt.Sprintf("asset%04d", i),
			PublicID:  fmt.Sprintf("gallery/img-%d", i),
			Width:     1600,
			Height:    900,
			SecureURL: fmt.Sprintf("https://assets.dam.example.com/gallery/img-%d.png", i),
			Colors: []provider.Swatch{
				{Hex: "#0a0a0a", Percent: 40},
				{Hex: "#3c3c3c", Percent: 30},
				{Hex: "#707070", Percent: 20},
				{Hex: "#f4f4f4", Percent: 10},
			},
			Context: &provider.Context{
				Custom: provider.CustomContext{Caption: fmt.Sprintf("Artwork %d", i)},
			},
		}
	}
	return resources
}

func TestEndToEnd_PageLifecycle(t *testing.T) {
	h := setupHarness(t, makeResources(85), gallery.Config{PageSize: 40})

	// Cold cache, page 2: exactly the 40 middle resources get normalized.
	rec, body := h.get(t, "/?page=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if body.Pagination.TotalItems != 85 || body.Pagination.TotalPages != 3 {
		t.Errorf("pagination = %+v", body.Pagination)
	}
	if len(body.Images) != 40 {
		t.Fatalf("got %d images, want 40", len(body.Images))
	}
	if body.Images[0].ID != "artwork-40-asse" {
		t.Errorf("first image = %q, want index 40", body.Images[0].ID)
	}
	if body.Images[0].BackgroundColor != "#f4f4f4" || body.Images[0].Color != "black" {
		t.Errorf("colors = %q/%q", body.Images[0].BackgroundColor, body.Images[0].Color)
	}

	_, detailAfterBuild := h.upstream.Counts()
	if detailAfterBuild != 40 {
		t.Errorf("detail fetches = %d, want 40", detailAfterBuild)
	}

	// Warm cache: same page again, no further detail fetches.
	rec, _ = h.get(t, "/?page=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("warm status = %d", rec.Code)
	}
	if _, detail := h.upstream.Counts(); detail != detailAfterBuild {
		t.Errorf("cache hit fetched details: %d -> %d", detailAfterBuild, detail)
	}

	// Out of range: empty images, no extra work.
	rec, body = h.get(t, "/?page=4")
	if rec.Code != http.StatusOK || len(body.Images) != 0 {
		t.Errorf("page 4: status %d, %d images", rec.Code, len(body.Images))
	}
	if _, detail := h.upstream.Counts(); detail != detailAfterBuild {
		t.Error("out-of-range page fetched details")
	}
}

func TestEndToEnd_InvalidationOnUpstreamChange(t *testing.T) {
	resources := makeResources(8)
	h := setupHarness(t, resources, gallery.Config{PageSize: 4})

	if rec, _ := h.get(t, "/?page=1"); rec.Code != http.StatusOK {
		t.Fatalf("warm-up failed: %d", rec.Code)
	}
	_, detailAfterBuild := h.upstream.Counts()

	// Drop one resource upstream: the cached page must be rebuilt.
	h.upstream.SetListing(resources[1:])
	rec, body := h.get(t, "/?page=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status after change = %d", rec.Code)
	}
	if body.Pagination.TotalItems != 7 {
		t.Errorf("TotalItems = %d, want 7", body.Pagination.TotalItems)
	}
	if body.Images[0].ID != "artwork-1-asse" {
		t.Errorf("first image after removal = %q", body.Images[0].ID)
	}
	if _, detail := h.upstream.Counts(); detail == detailAfterBuild {
		t.Error("changed listing did not rebuild the page")
	}
}

func TestEndToEnd_DevEndpointServesCacheOnly(t *testing.T) {
	h := setupHarness(t, makeResources(8), gallery.Config{PageSize: 4})

	// Nothing cached yet: /dev is empty and the upstream stays silent.
	rec, body := h.get(t, "/dev")
	if rec.Code != http.StatusOK || len(body.Images) != 0 {
		t.Errorf("cold /dev: status %d, %d images", rec.Code, len(body.Images))
	}
	if listing, detail := h.upstream.Counts(); listing != 0 || detail != 0 {
		t.Errorf("cold /dev hit upstream: listing=%d detail=%d", listing, detail)
	}

	// Warm through the main endpoint, then /dev serves it without upstream.
	if rec, _ := h.get(t, "/?page=1"); rec.Code != http.StatusOK {
		t.Fatalf("warm-up failed: %d", rec.Code)
	}
	listingAfter, detailAfter := h.upstream.Counts()

	rec, body = h.get(t, "/dev?page=1")
	if rec.Code != http.StatusOK || len(body.Images) != 4 {
		t.Errorf("warm /dev: status %d, %d images", rec.Code, len(body.Images))
	}
	if listing, detail := h.upstream.Counts(); listing != listingAfter || detail != detailAfter {
		t.Error("/dev called upstream")
	}
}

func TestEndToEnd_UpstreamFailurePropagates(t *testing.T) {
	h := setupHarness(t, makeResources(4), gallery.Config{PageSize: 4})
	h.upstream.FailAll(http.StatusServiceUnavailable)

	rec, _ := h.get(t, "/?page=1")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestEndToEnd_DetailFailureFailsWholePage(t *testing.T) {
	resources := makeResources(4)
	h := setupHarness(t, resources, gallery.Config{PageSize: 4})
	h.upstream.FailDetail(resources[2].AssetID, http.StatusInternalServerError)

	rec, _ := h.get(t, "/?page=1")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 (strict mode aborts the batch)", rec.Code)
	}
}

func TestEndToEnd_Unauthorized(t *testing.T) {
	h := setupHarness(t, makeResources(4), gallery.Config{PageSize: 4})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec := httptest.NewRecorder()
	h.srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if listing, _ := h.upstream.Counts(); listing != 0 {
		t.Error("unauthorized request reached upstream")
	}
}
