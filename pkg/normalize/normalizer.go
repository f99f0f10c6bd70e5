package normalize

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/artgrid/gallery-proxy/pkg/provider"
)

var normalizeFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gallery_normalize_failures_total",
	Help: "Total per-asset normalization failures by handling mode",
}, []string{"mode"})

// Mode selects how per-asset detail-fetch failures are handled.
type Mode string

const (
	// ModeStrict aborts the whole batch on the first failing asset. A partial
	// page silently missing entries is a worse failure mode than a clear
	// batch error.
	ModeStrict Mode = "strict"

	// ModeLenient logs the failure and skips the asset.
	ModeLenient Mode = "lenient"
)

// BatchError reports the asset that aborted a strict-mode batch.
type BatchError struct {
	AssetID string
	Err     error
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	return fmt.Sprintf("normalize asset %s: %v", e.AssetID, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *BatchError) Unwrap() error {
	return e.Err
}

// DetailFetcher fetches one resource's color detail by asset id.
type DetailFetcher interface {
	GetResource(ctx context.Context, assetID string) (*provider.RawResource, error)
}

// Normalizer derives NormalizedImage records from raw listing entries,
// fetching per-asset color detail as it goes.
type Normalizer struct {
	detail DetailFetcher
	mode   Mode
	logger zerolog.Logger
}

// New creates a normalizer. mode defaults to ModeStrict.
func New(detail DetailFetcher, mode Mode) *Normalizer {
	if mode == "" {
		mode = ModeStrict
	}
	return &Normalizer{
		detail: detail,
		mode:   mode,
		logger: log.With().Str("component", "normalizer").Logger(),
	}
}

// Batch normalizes a slice of listing entries in order. Detail fetches are
// issued sequentially, one asset at a time. In strict mode the first failure
// aborts the batch with a *BatchError; in lenient mode failing assets are
// skipped.
func (n *Normalizer) Batch(ctx context.Context, resources []provider.RawResource) ([]NormalizedImage, error) {
	images := make([]NormalizedImage, 0, len(resources))

	for i := range resources {
		res := &resources[i]

		detail, err := n.detail.GetResource(ctx, res.AssetID)
		if err != nil {
			normalizeFailuresTotal.WithLabelValues(string(n.mode)).Inc()

			if n.mode == ModeLenient {
				n.logger.Warn().
					Err(err).
					Str("asset_id", res.AssetID).
					Msg("Skipping asset after detail fetch failure")
				continue
			}

			return nil, &BatchError{AssetID: res.AssetID, Err: err}
		}

		images = append(images, fromResource(res, detail.Colors))
	}

	return images, nil
}
