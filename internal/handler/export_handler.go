package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AHSANooo/Clashes-Detector/internal/dto"
	appErrors "github.com/AHSANooo/Clashes-Detector/pkg/errors"
	"github.com/AHSANooo/Clashes-Detector/pkg/response"
)

type exportService interface {
	Export(ctx context.Context, format string, req dto.ExportRequest) (*dto.ExportFile, error)
}

// ExportHandler serves schedule downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Export godoc
// @Summary Download a schedule as CSV or PDF
// @Tags Schedule
// @Accept json
// @Produce text/csv,application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Param payload body dto.ExportRequest true "Proposal ID or sessions"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/export [post]
func (h *ExportHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	file, err := h.service.Export(c.Request.Context(), c.DefaultQuery("format", "csv"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
