package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ufoundit-dev/ufoundit/internal/realtime"
	"github.com/ufoundit-dev/ufoundit/pkg/response"
)

// HealthHandler reports service liveness and connectivity.
type HealthHandler struct {
	db  *gorm.DB
	hub *realtime.Hub
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(db *gorm.DB, hub *realtime.Hub) *HealthHandler {
	return &HealthHandler{db: db, hub: hub}
}

// Check verifies the database connection and reports basic runtime state.
func (h *HealthHandler) Check(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, response.Response{
			Success: false,
			Error:   &response.ErrorInfo{Code: "DATABASE_UNAVAILABLE", Message: "database ping failed"},
		})
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"status":      "ok",
		"connections": h.hub.ConnectionCount(),
	})
}
