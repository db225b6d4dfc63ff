package server

import (
	"crypto/subtle"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/transpolabs/transpo/internal/driverauth"
)

const contextDriverIDKey = "driver_id"

// DriverAuthRequired authenticates the driver device by its bearer key and
// stashes the resolved driver id on the request context.
func (s *Server) DriverAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		driverID, err := driverauth.Authenticate(c.Request.Context(), s.db, parts[1])
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextDriverIDKey, driverID)
		c.Next()
	}
}

// AdminKeyRequired guards the tariff administration endpoints with the
// static admin key from configuration.
func (s *Server) AdminKeyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.adminKey == "" {
			AbortWithError(c, ErrForbidden)
			return
		}
		key := strings.TrimSpace(c.GetHeader("X-Admin-Key"))
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.adminKey)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

func driverIDFrom(c *gin.Context) string {
	return c.GetString(contextDriverIDKey)
}

// RequestMetrics records latency per route template, not per raw path, so
// meter ids do not explode the label space.
func (s *Server) RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.HTTPRequests.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
