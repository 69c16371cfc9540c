package http

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "work-tracker.com/work-tracker/internal/errors"
	"work-tracker.com/work-tracker/internal/http/validators"
	"work-tracker.com/work-tracker/internal/reports"
	"work-tracker.com/work-tracker/internal/services"
)

// maxBodyBytes bounds a single snapshot upload.
const maxBodyBytes = 8 << 20

type Handler struct {
	syncService *services.SyncService
}

func NewHandler(syncService *services.SyncService) *Handler {
	return &Handler{
		syncService: syncService,
	}
}

func (h *Handler) Sync(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return apperrors.ErrInvalidJSON
	}

	req, err := validators.ValidateSyncRequest(body)
	if err != nil {
		return err
	}

	if _, err := h.syncService.Save(c.Request().Context(), req.Username, req.State); err != nil {
		return err
	}

	return c.String(http.StatusOK, "ok")
}

func (h *Handler) GetState(c echo.Context) error {
	username := c.Param("username")
	if username == "" {
		return apperrors.ErrMissingUsername
	}

	state, err := h.syncService.Load(c.Request().Context(), username)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, state)
}

func (h *Handler) GetReport(c echo.Context) error {
	username := c.Param("username")
	if username == "" {
		return apperrors.ErrMissingUsername
	}

	resp, err := h.syncService.Report(c.Request().Context(), username)
	if err != nil {
		return err
	}

	if c.QueryParam("format") == "csv" {
		c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+username+`-report.csv"`)
		c.Response().WriteHeader(http.StatusOK)
		return reports.WriteCSV(c.Response(), resp.Report)
	}

	return c.JSON(http.StatusOK, resp)
}
