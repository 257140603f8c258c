package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/ufoundit-dev/ufoundit/pkg/errors"
	"github.com/ufoundit-dev/ufoundit/pkg/logger"
	"github.com/ufoundit-dev/ufoundit/pkg/response"
)

// Recovery converts panics into structured 500 responses.
func Recovery() gin.HandlerFunc {
	log := logger.WithModule("recovery")

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				response.Error(c, apperrors.ErrInternalServer)
				c.Abort()
			}
		}()
		c.Next()
	}
}

// NotFoundHandler renders unmatched routes in the standard error envelope.
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Error(c, apperrors.ErrNotFound)
	}
}
