package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/solar-dashboard/internal/domain/dashboard"
	"github.com/yanqian/solar-dashboard/internal/domain/metrics"
)

// Handler wires the HTTP transport to the dashboard service.
type Handler struct {
	svc    dashboard.Service
	logger *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(svc dashboard.Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With("component", "http.handler"),
	}
}

type recordRequest struct {
	Qout       *float64 `json:"qout" binding:"required"`
	Qloss      *float64 `json:"qloss" binding:"required"`
	Efficiency *float64 `json:"efficiency" binding:"required"`
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Dashboard returns the current trends and synthesized series.
func (h *Handler) Dashboard(c *gin.Context) {
	dash, err := h.svc.Current(c.Request.Context())
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, dash)
}

// Predict forwards collector parameters to the predictor. Omitted fields keep
// their form defaults.
func (h *Handler) Predict(c *gin.Context) {
	input := dashboard.DefaultInput()
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	dash, err := h.svc.Predict(c.Request.Context(), input)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, dash)
}

// RecordSnapshot applies a snapshot measured outside the predictor.
func (h *Handler) RecordSnapshot(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if subject, ok := getSubject(c); ok {
		h.logger.Info("manual snapshot", "subject", subject)
	}

	dash, err := h.svc.Record(c.Request.Context(), metrics.Snapshot{
		Qout:       *req.Qout,
		Qloss:      *req.Qloss,
		Efficiency: *req.Efficiency,
	})
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusCreated, dash)
}

// History lists recent snapshots, newest first.
func (h *Handler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer", err))
			return
		}
		limit = parsed
	}

	items, err := h.svc.History(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": items})
}

// Defaults returns the form defaults and accepted shapes.
func (h *Handler) Defaults(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"input":  dashboard.DefaultInput(),
		"shapes": dashboard.Shapes,
	})
}
