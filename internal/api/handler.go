package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/banking/sanctions-screening/internal/domain"
	"github.com/banking/sanctions-screening/internal/pkg/logger"
	"github.com/banking/sanctions-screening/internal/sanctions"
	"github.com/banking/sanctions-screening/internal/screening"
)

// EntityScreener screens a single entity
type EntityScreener interface {
	ScreenEntity(ctx context.Context, entity domain.Entity, opts ...screening.ScreenOption) (*domain.ScreeningResult, error)
}

// PaymentScreener screens payments and reports running totals
type PaymentScreener interface {
	ScreenPayment(ctx context.Context, msg domain.PaymentMessage) (*domain.PaymentScreeningResult, error)
	StatsSnapshot() domain.StatsSnapshot
}

// ReferenceList hands out the current reference list snapshot
type ReferenceList interface {
	Snapshot() *sanctions.Snapshot
}

// Handler serves the screening HTTP API
type Handler struct {
	entities  EntityScreener
	payments  PaymentScreener
	reference ReferenceList
	jwtSecret string
	log       *logger.Logger
}

// NewHandler creates the API handler. An empty jwtSecret disables bearer authentication.
func NewHandler(entities EntityScreener, payments PaymentScreener, reference ReferenceList, jwtSecret string, log *logger.Logger) *Handler {
	return &Handler{
		entities:  entities,
		payments:  payments,
		reference: reference,
		jwtSecret: jwtSecret,
		log:       log.Named("api"),
	}
}

// Register mounts all routes on e
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)

	v1 := e.Group("/api/v1", BearerAuth(h.jwtSecret))
	v1.POST("/screening/entity", h.ScreenEntity)
	v1.POST("/screening/payment", h.ScreenPayment)
	v1.GET("/screening/stats", h.Stats)
	v1.GET("/sanctions/lists", h.Lists)
}

type screenEntityRequest struct {
	domain.Entity
	ThresholdOverride *float64 `json:"threshold_override,omitempty"`
}

// ScreenEntity handles POST /api/v1/screening/entity
func (h *Handler) ScreenEntity(c echo.Context) error {
	var req screenEntityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	var opts []screening.ScreenOption
	if req.ThresholdOverride != nil {
		opts = append(opts, screening.WithThresholdOverride(*req.ThresholdOverride))
	}

	result, err := h.entities.ScreenEntity(c.Request().Context(), req.Entity, opts...)
	if err != nil {
		return h.screeningError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// ScreenPayment handles POST /api/v1/screening/payment
func (h *Handler) ScreenPayment(c echo.Context) error {
	var msg domain.PaymentMessage
	if err := c.Bind(&msg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	result, err := h.payments.ScreenPayment(c.Request().Context(), msg)
	if err != nil {
		return h.screeningError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Stats handles GET /api/v1/screening/stats
func (h *Handler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.payments.StatsSnapshot())
}

type listsResponse struct {
	Version  uint64                  `json:"version"`
	LoadedAt time.Time               `json:"loaded_at"`
	Entries  int                     `json:"entries"`
	Lists    []sanctions.ListSummary `json:"lists"`
}

// Lists handles GET /api/v1/sanctions/lists
func (h *Handler) Lists(c echo.Context) error {
	snap := h.reference.Snapshot()
	return c.JSON(http.StatusOK, listsResponse{
		Version:  snap.Version(),
		LoadedAt: snap.LoadedAt(),
		Entries:  snap.Len(),
		Lists:    snap.Lists(),
	})
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	snap := h.reference.Snapshot()
	return c.JSON(http.StatusOK, map[string]any{
		"status":                 "ok",
		"reference_list_version": snap.Version(),
		"reference_list_entries": snap.Len(),
	})
}

func (h *Handler) screeningError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "screening aborted")
	default:
		h.log.Error("screening failed", logger.ErrorField(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "screening failed")
	}
}
