package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HealthCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status string        `json:"status"`
	Checks []HealthCheck `json:"checks"`
}

func (s *Server) RegisterSystemRoutes() {
	s.engine.GET("/healthz", s.GetHealth)
	s.engine.GET("/ready", s.GetReadiness)
	s.engine.GET("/metrics", s.metricsHandler())
}

func (s *Server) metricsHandler() gin.HandlerFunc {
	// the gorm prometheus plugin registers on the default registry
	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer}
	if s.gatherer != nil {
		gatherers = append(gatherers, s.gatherer)
	}
	return gin.WrapH(promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{}))
}

// GetHealth pings the database and, when configured, Redis. A Redis failure
// degrades the service but does not fail it since rule caching fails open.
func (s *Server) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Checks: []HealthCheck{}}
	status := http.StatusOK

	dbCheck := HealthCheck{Name: "database", Status: "ok"}
	if err := s.pingDB(ctx); err != nil {
		dbCheck.Status, dbCheck.Error = "down", err.Error()
		resp.Status = "down"
		status = http.StatusServiceUnavailable
	}
	resp.Checks = append(resp.Checks, dbCheck)

	if s.redis != nil {
		redisCheck := HealthCheck{Name: "redis", Status: "ok"}
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisCheck.Status, redisCheck.Error = "down", err.Error()
			if resp.Status == "ok" {
				resp.Status = "degraded"
			}
		}
		resp.Checks = append(resp.Checks, redisCheck)
	}

	c.JSON(status, resp)
}

func (s *Server) pingDB(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// GetReadiness reports whether the schema has been migrated to the version
// this binary embeds.
func (s *Server) GetReadiness(c *gin.Context) {
	if s.schemaGate == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}
	if err := s.schemaGate.MustBeActive(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
