package gallery

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/artgrid/gallery-proxy/pkg/cache"
	"github.com/artgrid/gallery-proxy/pkg/normalize"
	"github.com/artgrid/gallery-proxy/pkg/provider"
)

// Prometheus metrics for page cache decisions.
var (
	pageHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gallery_page_hits_total",
		Help: "Total derived pages served from cache",
	})

	pagesBuiltTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gallery_pages_built_total",
		Help: "Total derived pages built from a fresh listing slice",
	})

	invalidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_invalidations_total",
		Help: "Total snapshot invalidations by cause",
	}, []string{"cause"}) // "changed", "forced"
)

// Lister fetches the current folder listing from the upstream provider.
type Lister interface {
	ListFolder(ctx context.Context, folder string) ([]provider.RawResource, error)
}

// Batcher derives normalized images from a listing slice.
type Batcher interface {
	Batch(ctx context.Context, resources []provider.RawResource) ([]normalize.NormalizedImage, error)
}

// StateStore reads and writes the persisted gallery state record.
type StateStore interface {
	GetState(ctx context.Context, key cache.Key) (*cache.State, error)
	PutState(ctx context.Context, key cache.Key, state *cache.State) error
}

// Config holds the controller configuration.
type Config struct {
	// Folder is the upstream source folder path.
	Folder string

	// StateKey is the cache record name (default "state").
	StateKey string

	// PageSize is the default per-page size (default DefaultPageSize).
	PageSize int

	// Shuffle randomizes the order of the returned images. Presentation
	// only: the cached page order is never touched.
	Shuffle bool
}

// PageRequest is one client request for a derived page.
type PageRequest struct {
	// Page is the 1-based page number. The HTTP layer defaults an absent
	// parameter to 1; out-of-range values, 0 included, yield an empty page.
	Page int

	// PerPage overrides the configured page size when > 0.
	PerPage int

	// Force discards the cached snapshot regardless of upstream equality.
	Force bool
}

// PageResult is a complete derived page plus its pagination metadata.
type PageResult struct {
	Images     []normalize.NormalizedImage `json:"images"`
	Pagination Pagination                  `json:"pagination"`
}

// Controller orchestrates fetch, invalidation, normalization, and cache
// persistence for derived pages.
type Controller struct {
	store      StateStore
	lister     Lister
	normalizer Batcher
	config     Config
	logger     zerolog.Logger
}

// NewController creates a page cache controller.
func NewController(store StateStore, lister Lister, normalizer Batcher, cfg Config) *Controller {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Controller{
		store:      store,
		lister:     lister,
		normalizer: normalizer,
		config:     cfg,
		logger:     log.With().Str("component", "gallery").Logger(),
	}
}

func (c *Controller) key() cache.Key {
	return cache.Key{Folder: c.config.Folder, Name: c.config.StateKey}
}

// GetPage serves one derived page, regenerating cached state when the
// upstream folder changed or a refresh was forced.
func (c *Controller) GetPage(ctx context.Context, req PageRequest) (*PageResult, error) {
	key := c.key()

	// The snapshot read and the upstream listing fetch are independent;
	// run them concurrently.
	var (
		state   *cache.State
		listing []provider.RawResource
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := c.store.GetState(gctx, key)
		if err != nil {
			if errors.Is(err, cache.ErrCacheMiss) {
				return nil
			}
			if errors.Is(err, cache.ErrInvalidState) {
				c.logger.Warn().Err(err).Msg("Discarding undecodable state record")
				return nil
			}
			return err
		}
		state = s
		return nil
	})
	g.Go(func() error {
		l, err := c.lister.ListFolder(gctx, c.config.Folder)
		if err != nil {
			return err
		}
		listing = l
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hash, err := cache.SnapshotHash(listing)
	if err != nil {
		return nil, fmt.Errorf("hash listing: %w", err)
	}

	// Any structural difference, ordering included, discards every derived
	// page. No item-level diffing.
	dirty := false
	switch {
	case req.Force:
		invalidationsTotal.WithLabelValues("forced").Inc()
		c.logger.Info().Str("folder", c.config.Folder).Msg("Forced snapshot refresh")
		state = cache.NewState(listing, hash)
		dirty = true
	case state == nil || state.SnapshotHash != hash:
		if state != nil {
			invalidationsTotal.WithLabelValues("changed").Inc()
			c.logger.Info().
				Str("folder", c.config.Folder).
				Int("resources", len(listing)).
				Msg("Folder listing changed, invalidating derived pages")
		}
		state = cache.NewState(listing, hash)
		dirty = true
	}

	// Page defaulting happens at the HTTP layer; an explicit 0 here is an
	// out-of-range request and yields an empty page.
	page := req.Page
	perPage := clampPerPage(req.PerPage, c.config.PageSize)
	pagination := NewPagination(page, perPage, len(listing))

	result := &PageResult{
		Images:     []normalize.NormalizedImage{},
		Pagination: pagination,
	}

	// Out-of-range pages short-circuit without any normalization. A pending
	// invalidation is still persisted so the new snapshot sticks.
	if !pagination.InRange() {
		if dirty {
			if err := c.store.PutState(ctx, key, state); err != nil {
				return nil, err
			}
		}
		return result, nil
	}

	if images, ok := state.Pages[page]; ok {
		pageHitsTotal.Inc()
		c.logger.Debug().
			Int("page", page).
			Bool("cache_hit", true).
			Msg("Serving derived page from cache")
		result.Images = c.presentation(images)
		if dirty {
			if err := c.store.PutState(ctx, key, state); err != nil {
				return nil, err
			}
		}
		return result, nil
	}

	start, end := pagination.Bounds()
	images, err := c.normalizer.Batch(ctx, listing[start:end])
	if err != nil {
		return nil, err
	}

	state.Pages[page] = images
	pagesBuiltTotal.Inc()
	c.logger.Info().
		Int("page", page).
		Int("images", len(images)).
		Bool("cache_hit", false).
		Msg("Built derived page")

	// One put covers snapshot replacement and the new page: the record is a
	// single blob, so there is no torn-write window between them.
	if err := c.store.PutState(ctx, key, state); err != nil {
		return nil, err
	}

	result.Images = c.presentation(images)
	return result, nil
}

// CachedPage serves a page from the persisted state only: no upstream call,
// no write-back. Absent or undecodable state yields an empty result.
func (c *Controller) CachedPage(ctx context.Context, req PageRequest) (*PageResult, error) {
	state, err := c.store.GetState(ctx, c.key())
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) || errors.Is(err, cache.ErrInvalidState) {
			return &PageResult{
				Images:     []normalize.NormalizedImage{},
				Pagination: NewPagination(req.Page, clampPerPage(req.PerPage, c.config.PageSize), 0),
			}, nil
		}
		return nil, err
	}

	page := req.Page
	perPage := clampPerPage(req.PerPage, c.config.PageSize)
	pagination := NewPagination(page, perPage, len(state.Snapshot))

	result := &PageResult{
		Images:     []normalize.NormalizedImage{},
		Pagination: pagination,
	}
	if images, ok := state.Pages[page]; ok {
		result.Images = c.presentation(images)
	}
	return result, nil
}

// presentation returns the images as served: a copy, shuffled when
// configured. Cached data is never reordered.
func (c *Controller) presentation(images []normalize.NormalizedImage) []normalize.NormalizedImage {
	out := make([]normalize.NormalizedImage, len(images))
	copy(out, images)
	if c.config.Shuffle {
		rand.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
	}
	return out
}
