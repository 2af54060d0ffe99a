package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/nsg-intelligence-backend/internal/observability"
)

// scrape and probe traffic would otherwise dominate the API series
var unmeteredRoutes = map[string]bool{
	"/metrics":     true,
	"/healthcheck": true,
	"/readyz":      true,
}

// Metrics records per-route request counts, latency and in-flight requests.
// Requests that matched no route share the "unmatched" label so arbitrary
// paths cannot blow up label cardinality.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if unmeteredRoutes[c.FullPath()] {
			c.Next()
			return
		}
		began := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(began))
	}
}
