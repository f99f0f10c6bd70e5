// Package server exposes the gallery over HTTP: the derived-page endpoint,
// the cache-only inspection endpoint, health, and metrics.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/artgrid/gallery-proxy/pkg/gallery"
	"github.com/artgrid/gallery-proxy/pkg/normalize"
	"github.com/artgrid/gallery-proxy/pkg/provider"
)

// PageService is the controller surface the handler depends on.
type PageService interface {
	GetPage(ctx context.Context, req gallery.PageRequest) (*gallery.PageResult, error)
	CachedPage(ctx context.Context, req gallery.PageRequest) (*gallery.PageResult, error)
}

// GalleryHandler handles the gallery endpoints.
type GalleryHandler struct {
	service PageService
	logger  zerolog.Logger
}

// NewGalleryHandler creates a gallery handler.
func NewGalleryHandler(service PageService) *GalleryHandler {
	return &GalleryHandler{
		service: service,
		logger:  log.With().Str("component", "handler").Logger(),
	}
}

// Handle processes GET /: the full fetch → invalidate → normalize → cache flow.
func (h *GalleryHandler) Handle(c echo.Context) error {
	req, err := pageRequestFromQuery(c)
	if err != nil {
		return err
	}

	result, err := h.service.GetPage(c.Request().Context(), req)
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// HandleCached processes GET /dev: cached data only, no upstream call.
func (h *GalleryHandler) HandleCached(c echo.Context) error {
	req, err := pageRequestFromQuery(c)
	if err != nil {
		return err
	}

	result, err := h.service.CachedPage(c.Request().Context(), req)
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// pageRequestFromQuery parses page/per_page/force. An absent page defaults to
// 1; a non-numeric page or per_page is a client error.
func pageRequestFromQuery(c echo.Context) (gallery.PageRequest, error) {
	req := gallery.PageRequest{Page: 1}

	if pageStr := c.QueryParam("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			return req, echo.NewHTTPError(http.StatusBadRequest, "invalid page parameter")
		}
		req.Page = page
	}

	if perPageStr := c.QueryParam("per_page"); perPageStr != "" {
		perPage, err := strconv.Atoi(perPageStr)
		if err != nil {
			return req, echo.NewHTTPError(http.StatusBadRequest, "invalid per_page parameter")
		}
		req.PerPage = perPage
	}

	req.Force = c.QueryParam("force") == "true"
	return req, nil
}

// mapError translates domain errors into HTTP status codes. Upstream
// failures surface as 502 with the provider's status and message; batch
// normalization failures as 500. Everything else falls through to the
// generic error handler.
func (h *GalleryHandler) mapError(err error) error {
	var ue *provider.UpstreamError
	if errors.As(err, &ue) {
		h.logger.Error().
			Int("upstream_status", ue.StatusCode).
			Str("message", ue.Message).
			Msg("Upstream provider failure")
		return echo.NewHTTPError(http.StatusBadGateway, ue.Error())
	}

	if errors.Is(err, provider.ErrQuotaExceeded) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "provider quota exceeded")
	}

	var be *normalize.BatchError
	if errors.As(err, &be) {
		h.logger.Error().
			Str("asset_id", be.AssetID).
			Err(be.Err).
			Msg("Batch normalization failure")
		return echo.NewHTTPError(http.StatusInternalServerError, be.Error())
	}

	return err
}

// HandleHealth processes GET /healthz.
func (h *GalleryHandler) HandleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
