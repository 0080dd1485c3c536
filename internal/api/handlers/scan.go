package handlers

import (
	"errors"
	"net/http"
	"time"

	"enforcement-backend/internal/models"
	"enforcement-backend/internal/repository"
	"enforcement-backend/internal/services"
	"enforcement-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ScanHandler struct {
	fineService *services.FineService
	validator   *validator.Validate
}

func NewScanHandler(fineService *services.FineService) *ScanHandler {
	return &ScanHandler{
		fineService: fineService,
		validator:   validator.New(),
	}
}

type ScanRequest struct {
	RFID string `json:"rfid" validate:"required"`
}

type ScanResponse struct {
	Vehicle          *models.Vehicle           `json:"vehicle"`
	InsuranceExpired bool                      `json:"insuranceExpired"`
	PUCExpired       bool                      `json:"pucExpired"`
	FineIssued       bool                      `json:"fineIssued"`
	Fine             *services.IssueFineResult `json:"fine,omitempty"`
}

// ScanVehicle resolves a scanned RFID tag, reports the vehicle's compliance
// status, and issues a fine as a side effect when violations are found.
func (h *ScanHandler) ScanVehicle(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	result, err := h.fineService.IssueFineIfViolating(c.Request.Context(), req.RFID, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Vehicle not found", err)
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to process scan", err)
		return
	}

	resp := &ScanResponse{
		Vehicle:    result.Vehicle,
		FineIssued: result.Issued,
	}
	for _, v := range result.Violations {
		switch v.Type {
		case services.ViolationInsuranceExpired:
			resp.InsuranceExpired = true
		case services.ViolationPUCExpired:
			resp.PUCExpired = true
		}
	}
	if result.Issued {
		resp.Fine = result
	}

	message := "Vehicle is compliant"
	if result.Issued {
		message = "Violations detected, fine issued"
	}

	utils.SuccessResponse(c, http.StatusOK, message, resp)
}
