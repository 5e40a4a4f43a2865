package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageza/ai-book/backend/internal/api"
	"github.com/pageza/ai-book/backend/internal/middleware"
	"github.com/pageza/ai-book/backend/internal/service"
)

// Token scopes checked per route group
const (
	ScopeRecommendations = "recommendations"
	ScopeProfile         = "profile"
)

// Dependencies are the services the routes are built from.
// A nil Auth disables token checks; a nil RateLimiter disables rate limiting.
type Dependencies struct {
	Recommendations service.IRecommendationService
	Profiles        service.IProfileService
	Quizzes         service.IQuizService
	Conversation    api.Conversation
	Health          *api.HealthHandler
	Auth            middleware.TokenValidator
	RateLimiter     *middleware.RateLimiter
	CORSOrigins     []string
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(), middleware.ErrorHandler(), middleware.CORS(deps.CORSOrigins))

	if deps.Health != nil {
		deps.Health.RegisterRoutes(router)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/v1")
	if deps.Auth != nil {
		v1.Use(middleware.AuthMiddleware(deps.Auth))
	}

	var recMiddleware []gin.HandlerFunc
	if deps.Auth != nil {
		recMiddleware = append(recMiddleware, middleware.RequireScope(ScopeRecommendations))
	}
	if deps.RateLimiter != nil {
		recMiddleware = append(recMiddleware, deps.RateLimiter.PerUserMiddleware())
	}
	api.NewRecommendationHandler(deps.Recommendations).RegisterRoutes(v1, recMiddleware...)

	profileRoutes := v1.Group("")
	if deps.Auth != nil {
		profileRoutes.Use(middleware.RequireScope(ScopeProfile))
	}
	api.NewProfileHandler(deps.Profiles).RegisterRoutes(profileRoutes)
	api.NewQuizHandler(deps.Quizzes).RegisterRoutes(profileRoutes)

	if deps.Conversation != nil {
		var convoMiddleware []gin.HandlerFunc
		if deps.Auth != nil {
			convoMiddleware = append(convoMiddleware, middleware.RequireScope(ScopeRecommendations))
		}
		api.NewConversationHandler(deps.Conversation).RegisterRoutes(v1, convoMiddleware...)
	}

	return router
}
