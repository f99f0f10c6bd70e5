// Package cache provides the Redis-backed persistence for the gallery state:
// one versioned record per folder holding the last-seen snapshot, its hash,
// and every derived page computed against it. Writing the record as a single
// blob makes snapshot-plus-pages updates atomic.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/artgrid/gallery-proxy/pkg/normalize"
	"github.com/artgrid/gallery-proxy/pkg/provider"
)

// State is the cached gallery state for one folder. Pages holds only pages
// computed since the snapshot was last replaced; replacing the snapshot
// discards all of them.
type State struct {
	// SnapshotHash is the structural hash of Snapshot. Any difference in the
	// upstream listing, including ordering, produces a different hash.
	SnapshotHash string `json:"snapshot_hash"`

	// Snapshot is the last-seen full folder listing.
	Snapshot []provider.RawResource `json:"snapshot"`

	// Pages maps 1-based page numbers to their derived images.
	Pages map[int][]normalize.NormalizedImage `json:"pages"`

	// BuiltAt is when the snapshot was taken.
	BuiltAt time.Time `json:"built_at"`
}

// NewState creates a fresh state for a listing with no derived pages.
func NewState(listing []provider.RawResource, hash string) *State {
	return &State{
		SnapshotHash: hash,
		Snapshot:     listing,
		Pages:        make(map[int][]normalize.NormalizedImage),
		BuiltAt:      time.Now().UTC(),
	}
}

// SnapshotHash computes the structural hash of a folder listing: SHA-256 over
// its JSON encoding. Deep equality including ordering, per the invalidation
// contract.
func SnapshotHash(listing []provider.RawResource) (string, error) {
	data, err := json.Marshal(listing)
	if err != nil {
		return "", fmt.Errorf("marshal listing: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
