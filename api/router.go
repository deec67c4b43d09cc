package api

import (
	"time"

	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
)

// NewRouter builds the read-only ops API.
func NewRouter(flightSvc flights.FlightUseCase, checks map[string]Check, log hclog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	NewHealthHandler(checks).Register(r)
	NewFlightHandler(flightSvc).Register(r.Group("/flights"))
	return r
}

func requestLogger(log hclog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
	}
}
