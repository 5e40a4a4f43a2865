package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/ai-book/backend/internal/api"
	"github.com/pageza/ai-book/backend/internal/service"
	"github.com/pageza/ai-book/backend/internal/testhelpers"
	"github.com/pageza/ai-book/backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(r http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSetupRouter_Open(t *testing.T) {
	profiles := new(testhelpers.MockProfileService)
	profiles.On("GetProfile", mock.Anything, int64(1)).Return(nil, service.ErrNotFound)

	r := SetupRouter(Dependencies{
		Recommendations: new(testhelpers.MockRecommendationService),
		Profiles:        profiles,
		Quizzes:         new(testhelpers.MockQuizService),
		Health:          api.NewHealthHandler(func(context.Context) error { return nil }, nil, nil),
	})

	assert.Equal(t, http.StatusOK, get(r, "/", nil).Code)
	assert.Equal(t, http.StatusOK, get(r, "/health", nil).Code)

	w := get(r, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")

	w = get(r, "/v1/users/1/profile", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSetupRouter_Auth(t *testing.T) {
	auth, err := service.NewAuthService("router-secret")
	require.NoError(t, err)

	profiles := new(testhelpers.MockProfileService)
	profiles.On("GetProfile", mock.Anything, int64(1)).Return(&types.ProfileOutput{UserID: 1, Lang: "ru"}, nil)

	r := SetupRouter(Dependencies{
		Recommendations: new(testhelpers.MockRecommendationService),
		Profiles:        profiles,
		Quizzes:         new(testhelpers.MockQuizService),
		Auth:            auth,
	})

	assert.Equal(t, http.StatusUnauthorized, get(r, "/v1/users/1/profile", nil).Code)

	full, err := auth.GenerateToken("bot", nil, time.Hour)
	require.NoError(t, err)
	w := get(r, "/v1/users/1/profile", map[string]string{"Authorization": "Bearer " + full})
	assert.Equal(t, http.StatusOK, w.Code)

	recsOnly, err := auth.GenerateToken("bot", []string{ScopeRecommendations}, time.Hour)
	require.NoError(t, err)
	w = get(r, "/v1/users/1/profile", map[string]string{"Authorization": "Bearer " + recsOnly})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
