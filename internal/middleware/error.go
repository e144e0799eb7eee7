package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "tracker/internal/errors"
	"tracker/internal/logger"
)

// ErrorHandler renders the last error attached with c.Error as the API's
// {"error": {"code", "message"}} body, unless the handler already responded.
// Anything that is not an *AppError becomes INTERNAL_ERROR.
func ErrorHandler() gin.HandlerFunc {
	log := logger.Named("http")
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr := asAppError(err)

		switch {
		case appErr == apperrors.ErrInternalServer:
			log.Errorw("unhandled error",
				"request_id", c.GetString(requestIDKey),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err.Error(),
			)
		case appErr.Internal != nil:
			log.Errorw("request failed",
				"request_id", c.GetString(requestIDKey),
				"path", c.Request.URL.Path,
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
			)
		}
		writeError(c, appErr)
	}
}

// asAppError unwraps err to an *AppError, falling back to the internal error.
func asAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.ErrInternalServer
}

func writeError(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
