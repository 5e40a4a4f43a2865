// Package api holds the gin handlers of the /v1 HTTP surface.
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/ai-book/backend/internal/types"
)

// userIDParam parses the :user_id path parameter, answering 400 when it is not an integer
func userIDParam(c *gin.Context) (int64, bool) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "user_id must be an integer"})
		return 0, false
	}
	return userID, true
}

// badRequest answers 400 for an unreadable or invalid body
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
}
