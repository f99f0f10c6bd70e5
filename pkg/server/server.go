package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds the HTTP server configuration.
type Config struct {
	// APISecret is compared against the X-API-Key header.
	APISecret string

	// DevMode disables authentication.
	DevMode bool
}

// New assembles the echo instance: routes, auth, panic recovery, and the
// JSON error envelope.
func New(cfg Config, handler *GalleryHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	logger := log.With().Str("component", "server").Logger()
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())

	auth := APIKeyAuth(cfg.APISecret, cfg.DevMode)
	e.GET("/", handler.Handle, auth)
	e.GET("/dev", handler.HandleCached, auth)

	e.GET("/healthz", handler.HandleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}

// errorHandler renders every unhandled error as a JSON {"error": ...} body.
// Unclassified errors become a generic 500 carrying the error message.
func errorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		message := err.Error()

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			message = fmt.Sprintf("%v", he.Message)
		}

		logger.Error().
			Err(err).
			Int("status", code).
			Str("path", c.Request().URL.Path).
			Msg("Request failed")

		if !c.Response().Committed {
			if jsonErr := c.JSON(code, map[string]string{"error": message}); jsonErr != nil {
				logger.Error().Err(jsonErr).Msg("Failed to write error response")
			}
		}
	}
}
