package handlers

import (
	"errors"
	"net/http"
	"time"

	"enforcement-backend/internal/repository"
	"enforcement-backend/internal/services"
	"enforcement-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type FineHandler struct {
	fineService       *services.FineService
	settlementService *services.SettlementService
	validator         *validator.Validate
}

func NewFineHandler(fineService *services.FineService, settlementService *services.SettlementService) *FineHandler {
	return &FineHandler{
		fineService:       fineService,
		settlementService: settlementService,
		validator:         validator.New(),
	}
}

type ImposeFineRequest struct {
	RFID string `json:"rfid" validate:"required"`
}

// ImposeFine issues a fine for the vehicle behind the RFID tag if any
// compliance violation is found.
func (h *FineHandler) ImposeFine(c *gin.Context) {
	var req ImposeFineRequest
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
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to impose fine", err)
		return
	}

	if !result.Issued {
		utils.SuccessResponse(c, http.StatusOK, "No violations found, no fine issued", result)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Fine issued successfully", result)
}

type SettleRequest struct {
	Token         string `json:"token" validate:"required"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
}

// Settle transitions all unpaid fines under the token to paid.
func (h *FineHandler) Settle(c *gin.Context) {
	var req SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	result, err := h.settlementService.Settle(c.Request.Context(), req.Token, req.PaymentMethod)
	if err != nil {
		if errors.Is(err, services.ErrNothingToSettle) {
			utils.ErrorResponse(c, http.StatusNotFound, "No unpaid fines for this token", err)
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to settle fines", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Payment recorded successfully", result)
}

// ListFines returns all fines and the outstanding total for an access token.
func (h *FineHandler) ListFines(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Token is required", nil)
		return
	}

	listing, err := h.settlementService.ListFines(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, services.ErrTokenNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Invalid or expired token", err)
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve fines", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Fines retrieved successfully", listing)
}
