package handlers

import (
	"net/http"

	"enforcement-backend/internal/services"
	"enforcement-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// Summary returns registration and collection aggregates for the dashboard.
func (h *ReportHandler) Summary(c *gin.Context) {
	report, err := h.reportService.Summary(c.Request.Context())
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to generate report", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Report generated successfully", report)
}
