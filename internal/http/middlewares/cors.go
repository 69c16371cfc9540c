package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CORS echoes the caller's Origin (or "*") and answers every preflight
// with 204.
func CORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get(echo.HeaderOrigin)
			if origin == "" {
				origin = "*"
			}

			h := c.Response().Header()
			h.Set(echo.HeaderAccessControlAllowOrigin, origin)
			h.Set(echo.HeaderAccessControlAllowMethods, "GET, POST, OPTIONS")
			h.Set(echo.HeaderAccessControlAllowHeaders, echo.HeaderContentType)
			h.Set(echo.HeaderAccessControlMaxAge, "600")
			h.Set("Cache-Control", "no-store")
			if origin != "*" {
				h.Add(echo.HeaderVary, echo.HeaderOrigin)
			}

			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}

			return next(c)
		}
	}
}
