package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/ai-book/backend/internal/service"
	"github.com/pageza/ai-book/backend/internal/types"
)

// ProfileHandler serves /v1/users/:user_id/profile
type ProfileHandler struct {
	profileService service.IProfileService
}

// NewProfileHandler creates a ProfileHandler
func NewProfileHandler(profileService service.IProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/users/:user_id/profile", h.GetProfile)
	router.PUT("/users/:user_id/profile", h.UpdateProfile)
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "profile_not_found"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile creates or merges the profile and returns the stored result
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	var input types.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	profile, err := h.profileService.UpsertProfile(c.Request.Context(), userID, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
