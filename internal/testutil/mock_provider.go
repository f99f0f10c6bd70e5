// Package testutil provides testing utilities for the gallery proxy.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/artgrid/gallery-proxy/pkg/provider"
)

// MockProvider is a configurable fake asset-provider API for testing. It
// serves the folder-listing and per-resource detail endpoints and counts
// invocations so tests can assert that cache hits skip upstream work.
type MockProvider struct {
	server *httptest.Server
	mu     sync.RWMutex

	listing   []provider.RawResource
	details   map[string]provider.RawResource
	failWith  int
	failPaths map[string]int
	headers   map[string]string

	// Tracking
	ListingCount int
	DetailCount  int
	LastAuth     string
}

// NewMockProvider creates a mock provider server with an empty folder.
func NewMockProvider() *MockProvider {
	mock := &MockProvider{
		details:   make(map[string]provider.RawResource),
		failPaths: make(map[string]int),
		headers:   make(map[string]string),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the mock server URL, used as the provider BaseURL.
func (m *MockProvider) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockProvider) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListingCount = 0
	m.DetailCount = 0
	m.LastAuth = ""
}

// SetListing replaces the folder listing and registers each resource for
// detail lookup by asset id.
func (m *MockProvider) SetListing(resources []provider.RawResource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listing = resources
	for _, r := range resources {
		m.details[r.AssetID] = r
	}
}

// SetDetail overrides the detail response for one asset id.
func (m *MockProvider) SetDetail(assetID string, resource provider.RawResource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.details[assetID] = resource
}

// FailAll makes every endpoint respond with the given status code.
// Pass 0 to restore normal behavior.
func (m *MockProvider) FailAll(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = status
}

// FailDetail makes the detail endpoint for one asset id respond with the
// given status code.
func (m *MockProvider) FailDetail(assetID string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPaths["/resources/"+assetID] = status
}

// SetHeader adds a response header to every response (quota headers etc).
func (m *MockProvider) SetHeader(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.headers[key] = value
}

// Counts returns the listing and detail invocation counts.
func (m *MockProvider) Counts() (listing, detail int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ListingCount, m.DetailCount
}

func (m *MockProvider) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.LastAuth = r.Header.Get("Authorization")
	failWith := m.failWith
	pathFail := m.failPaths[r.URL.Path]
	for k, v := range m.headers {
		w.Header().Set(k, v)
	}

	isListing := r.URL.Path == "/resources/by_folder"
	if isListing {
		m.ListingCount++
	} else if strings.HasPrefix(r.URL.Path, "/resources/") {
		m.DetailCount++
	}
	listing := m.listing
	m.mu.Unlock()

	if failWith != 0 {
		writeError(w, failWith)
		return
	}
	if pathFail != 0 {
		writeError(w, pathFail)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if isListing {
		_ = json.NewEncoder(w).Encode(map[string]any{"resources": listing})
		return
	}

	if strings.HasPrefix(r.URL.Path, "/resources/") {
		assetID := strings.TrimPrefix(r.URL.Path, "/resources/")
		m.mu.RLock()
		detail, ok := m.details[assetID]
		m.mu.RUnlock()
		if !ok {
			writeError(w, http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(detail)
		return
	}

	writeError(w, http.StatusNotFound)
}

func writeError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":{"message":"%s"}}`, http.StatusText(status))
}
