package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/ai-book/backend/internal/logging"
	"github.com/pageza/ai-book/backend/internal/types"
)

// ErrorHandler recovers panics and turns unhandled handler errors into a JSON 500
func ErrorHandler() gin.HandlerFunc {
	log := logging.With("http")
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Str("request_id", RequestID(c)).
					Str("path", c.Request.URL.Path).
					Msg("panic while handling request")
				c.AbortWithStatusJSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			log.Error().
				Err(c.Errors.Last().Err).
				Str("request_id", RequestID(c)).
				Str("path", c.Request.URL.Path).
				Msg("request failed")
			c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
		}
	}
}
