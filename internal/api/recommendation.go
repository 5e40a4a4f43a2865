package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pageza/ai-book/backend/internal/logging"
	"github.com/pageza/ai-book/backend/internal/service"
	"github.com/pageza/ai-book/backend/internal/types"
)

// RecommendationHandler serves POST /v1/users/:user_id/recommendations
type RecommendationHandler struct {
	recommendations service.IRecommendationService
	log             zerolog.Logger
}

// NewRecommendationHandler creates a RecommendationHandler
func NewRecommendationHandler(recs service.IRecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendations: recs, log: logging.With("api")}
}

// RegisterRoutes mounts the handler; extra middleware (rate limiting) runs before it
func (h *RecommendationHandler) RegisterRoutes(router *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, middleware...), h.Recommend)
	router.POST("/users/:user_id/recommendations", handlers...)
}

// Recommend answers with up to five books. An empty body means no preferences.
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	var prefs types.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	set, err := h.recommendations.Recommend(c.Request.Context(), prefs)
	if err != nil {
		h.respondLLMError(c, userID, err)
		return
	}

	books := set.Items
	if books == nil {
		books = []types.Recommendation{}
	}
	c.JSON(http.StatusOK, types.RecommendationResponse{Books: books, Degraded: set.Degraded})
}

// respondLLMError maps ErrTimeout to 504 and UpstreamError to 502; the detail is logged only
func (h *RecommendationHandler) respondLLMError(c *gin.Context, userID int64, err error) {
	event := h.log.Warn().Err(err).Int64("user_id", userID)

	var upstream *service.UpstreamError
	switch {
	case errors.Is(err, service.ErrTimeout):
		event.Msg("recommendation timed out")
		c.JSON(http.StatusGatewayTimeout, types.ErrorResponse{Error: "LLM timeout"})
	case errors.As(err, &upstream):
		event.Str("kind", string(upstream.Kind)).Int("upstream_status", upstream.StatusCode).Msg("recommendation upstream error")
		c.JSON(http.StatusBadGateway, types.ErrorResponse{Error: "LLM upstream error", Status: upstream.StatusCode})
	default:
		event.Msg("recommendation failed")
		c.JSON(http.StatusBadGateway, types.ErrorResponse{Error: "LLM upstream error"})
	}
}
