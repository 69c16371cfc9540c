package http

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	middleware "work-tracker.com/work-tracker/internal/http/middlewares"
	"work-tracker.com/work-tracker/internal/metrics"
)

func Register(e *echo.Echo, h *Handler, logger *logrus.Logger, rateLimitPerMinute int) {
	e.HTTPErrorHandler = ErrorHandler(logger)

	e.Use(middleware.RequestLog(logger))
	e.Use(echomw.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RateLimiter(rateLimitPerMinute, time.Minute))

	e.POST("/sync", h.Sync)
	e.GET("/state/:username", h.GetState)
	e.GET("/reports/:username", h.GetReport)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}
