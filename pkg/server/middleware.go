package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIKeyAuth checks the X-API-Key header against the configured secret using
// a constant-time compare. When devMode is set the check is bypassed.
func APIKeyAuth(secret string, devMode bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if devMode {
				return next(c)
			}

			key := c.Request().Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "Unauthorized",
				})
			}
			return next(c)
		}
	}
}
