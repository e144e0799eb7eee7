package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"tracker/internal/cache"
	"tracker/internal/dates"
	apperrors "tracker/internal/errors"
	"tracker/internal/logger"
)

// monthSelector is implemented by services whose working set follows a month.
type monthSelector interface {
	SelectMonth(ctx context.Context, month dates.Month) error
}

// parsePathID reads a record id path parameter.
// Returns ErrInvalidInput if the parameter is blank.
//
//nolint:unparam // param is intentionally generic for reuse across handlers with different path params
func parsePathID(c *gin.Context, param string) (string, error) {
	id := strings.TrimSpace(c.Param(param))
	if id == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// parseMonthQuery reads the optional ?month=YYYY-MM query parameter.
// The second return value is false when the parameter is absent.
func parseMonthQuery(c *gin.Context) (dates.Month, bool, error) {
	raw := c.Query("month")
	if raw == "" {
		return dates.Month{}, false, nil
	}
	month, err := dates.ParseMonth(raw)
	if err != nil {
		return dates.Month{}, false, apperrors.Wrap(apperrors.ErrInvalidMonth, err)
	}
	return month, true, nil
}

// applyMonthQuery switches svc to the month named by ?month= when present.
func applyMonthQuery(c *gin.Context, svc monthSelector) error {
	month, ok, err := parseMonthQuery(c)
	if err != nil || !ok {
		return err
	}
	return svc.SelectMonth(c.Request.Context(), month)
}

// loadCached returns the cached payload for key, computing and storing it on
// a miss. Cache failures are logged and never fail the request.
func loadCached[T any](c *gin.Context, store cache.Cache, key string, load func(ctx context.Context) (T, error)) (T, error) {
	ctx := c.Request.Context()
	var out T
	hit, err := store.Get(ctx, key, &out)
	if err != nil {
		logger.Get().Warnw("cache read failed", "key", key, "error", err)
	}
	if hit {
		return out, nil
	}

	out, err = load(ctx)
	if err != nil {
		return out, err
	}
	if err := store.Set(ctx, key, out); err != nil {
		logger.Get().Warnw("cache write failed", "key", key, "error", err)
	}
	return out, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// MessageResponse represents a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
