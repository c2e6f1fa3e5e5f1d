package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AHSANooo/Clashes-Detector/internal/dto"
	"github.com/AHSANooo/Clashes-Detector/internal/middleware"
	"github.com/AHSANooo/Clashes-Detector/internal/models"
	appErrors "github.com/AHSANooo/Clashes-Detector/pkg/errors"
	"github.com/AHSANooo/Clashes-Detector/pkg/response"
)

type timetableService interface {
	Catalog(ctx context.Context) (*models.Catalog, error)
	Timetable(ctx context.Context, req dto.TimetableRequest) (*dto.TimetableResponse, error)
	BatchSessions(ctx context.Context, batch string) ([]models.Session, error)
	Clashes(ctx context.Context, req dto.ClashRequest) (*dto.ClashResponse, error)
	Optimize(ctx context.Context, req dto.OptimizeRequest) (*dto.OptimizeResponse, error)
	InvalidateCache(ctx context.Context) error
}

// TimetableHandler exposes course, timetable and schedule endpoints.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(service timetableService) *TimetableHandler {
	return &TimetableHandler{service: service}
}

// Courses godoc
// @Summary List courses, batches and departments found in the timetable
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /courses [get]
func (h *TimetableHandler) Courses(c *gin.Context) {
	catalog, err := h.service.Catalog(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(catalog.Courses))
	response.OK(c, catalog, middleware.ExtractMeta(c))
}

// Timetable godoc
// @Summary Sessions and clashes of the selected courses
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.TimetableRequest true "Selected courses"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable [post]
func (h *TimetableHandler) Timetable(c *gin.Context) {
	var req dto.TimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}
	result, err := h.service.Timetable(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "clash_count", len(result.Clashes))
	response.OK(c, result, middleware.ExtractMeta(c))
}

// BatchSessions godoc
// @Summary Every section's sessions for one batch
// @Tags Timetable
// @Produce json
// @Param batch path string true "Batch label as written in the legend"
// @Success 200 {object} response.Envelope
// @Router /batches/{batch}/sessions [get]
func (h *TimetableHandler) BatchSessions(c *gin.Context) {
	batch := strings.TrimSpace(c.Param("batch"))
	sessions, err := h.service.BatchSessions(c.Request.Context(), batch)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(sessions))
	response.OK(c, sessions, middleware.ExtractMeta(c))
}

// Clashes godoc
// @Summary Detect clashes among the given sessions
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.ClashRequest true "Sessions to check"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /clashes [post]
func (h *TimetableHandler) Clashes(c *gin.Context) {
	var req dto.ClashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid clash payload"))
		return
	}
	result, err := h.service.Clashes(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "clash_count", len(result.Clashes))
	response.OK(c, result, middleware.ExtractMeta(c))
}

// Optimize godoc
// @Summary Pick one section per course with the fewest clashes and gaps
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.OptimizeRequest true "Batches, courses and excluded sections"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 504 {object} response.Envelope
// @Router /schedule/optimize [post]
func (h *TimetableHandler) Optimize(c *gin.Context) {
	var req dto.OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid optimisation payload"))
		return
	}
	result, err := h.service.Optimize(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "leaves", result.Leaves)
	middleware.SetMeta(c, "truncated", result.Truncated)
	response.OK(c, result, middleware.ExtractMeta(c))
}

// InvalidateCache godoc
// @Summary Drop the cached timetable grid
// @Tags Operations
// @Success 204
// @Router /cache [delete]
func (h *TimetableHandler) InvalidateCache(c *gin.Context) {
	if err := h.service.InvalidateCache(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
