package handlers

import (
	"net/http"

	"enforcement-backend/pkg/database"
	"enforcement-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

type HealthHandler struct {
	db *mongo.Database
}

func NewHealthHandler(db *mongo.Database) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(c *gin.Context) {
	if err := database.Health(h.db); err != nil {
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Service healthy", gin.H{"status": "ok"})
}
