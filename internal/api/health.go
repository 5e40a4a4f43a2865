package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ServiceName is reported by the root endpoint
const ServiceName = "ai-book-backend"

// Pinger reports whether a dependency is reachable
type Pinger func(ctx context.Context) error

// BreakerState reports the LLM circuit breaker state
type BreakerState interface {
	State() string
}

// HealthHandler serves / and /health
type HealthHandler struct {
	database Pinger
	redis    Pinger
	breaker  BreakerState
}

// NewHealthHandler creates a HealthHandler; redis and breaker may be nil
func NewHealthHandler(database, redis Pinger, breaker BreakerState) *HealthHandler {
	return &HealthHandler{database: database, redis: redis, breaker: breaker}
}

func (h *HealthHandler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "service": ServiceName})
}

// Health answers 503 when a configured dependency does not respond
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{"status": "ok"}

	check := func(name string, ping Pinger) {
		if ping == nil {
			body[name] = "disabled"
			return
		}
		if err := ping(ctx); err != nil {
			body[name] = "unavailable"
			status = http.StatusServiceUnavailable
			return
		}
		body[name] = "ok"
	}
	check("database", h.database)
	check("redis", h.redis)

	if h.breaker != nil {
		body["llm_breaker"] = h.breaker.State()
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}
