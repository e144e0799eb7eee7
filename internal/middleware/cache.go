package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tracker/internal/cache"
	"tracker/internal/logger"
)

// InvalidateCache drops the given cache groups after every successful
// mutating request on the route it guards. Reads and failed writes leave
// the cache alone.
func InvalidateCache(store cache.Cache, groups ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		for _, group := range groups {
			if err := store.Invalidate(c.Request.Context(), group); err != nil {
				logger.Get().Warnw("cache invalidation failed", "group", group, "error", err)
			}
		}
	}
}
