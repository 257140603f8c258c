package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ufoundit-dev/ufoundit/internal/middleware"
	"github.com/ufoundit-dev/ufoundit/internal/models"
	apperrors "github.com/ufoundit-dev/ufoundit/pkg/errors"
	"github.com/ufoundit-dev/ufoundit/pkg/validator"
)

// bindAndValidate decodes the JSON body into T and runs struct validation,
// returning a client-renderable error on failure.
func bindAndValidate[T any](c *gin.Context) (*T, error) {
	var payload T
	if err := c.ShouldBindJSON(&payload); err != nil {
		return nil, apperrors.NewBadRequest("invalid request body")
	}
	if err := validator.ValidateStruct(payload); err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}
	return &payload, nil
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.CtxUserIDKey)
}

func currentUserName(c *gin.Context) string {
	return c.GetString(middleware.CtxUserNameKey)
}

func currentUserIsAdmin(c *gin.Context) bool {
	return c.GetString(middleware.CtxRoleKey) == models.RoleAdmin
}
