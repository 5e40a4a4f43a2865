package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/ai-book/backend/internal/conversation"
	"github.com/pageza/ai-book/backend/internal/middleware"
	"github.com/pageza/ai-book/backend/internal/service"
	"github.com/pageza/ai-book/backend/internal/testhelpers"
	"github.com/pageza/ai-book/backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockConversation struct {
	mock.Mock
}

func (m *mockConversation) Handle(ctx context.Context, userID int64, text string) (conversation.Reply, error) {
	args := m.Called(ctx, userID, text)
	return args.Get(0).(conversation.Reply), args.Error(1)
}

type fixture struct {
	router   *gin.Engine
	recs     *testhelpers.MockRecommendationService
	profiles *testhelpers.MockProfileService
	quizzes  *testhelpers.MockQuizService
	convo    *mockConversation
}

func newFixture() *fixture {
	f := &fixture{
		recs:     new(testhelpers.MockRecommendationService),
		profiles: new(testhelpers.MockProfileService),
		quizzes:  new(testhelpers.MockQuizService),
		convo:    new(mockConversation),
	}
	f.router = gin.New()
	f.router.Use(middleware.ErrorHandler())
	v1 := f.router.Group("/v1")
	NewRecommendationHandler(f.recs).RegisterRoutes(v1)
	NewProfileHandler(f.profiles).RegisterRoutes(v1)
	NewQuizHandler(f.quizzes).RegisterRoutes(v1)
	NewConversationHandler(f.convo).RegisterRoutes(v1)
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRecommend(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture()
		prefs := types.Preferences{Favorites: []string{"Dune"}, Genres: []string{"sci-fi"}}
		f.recs.On("Recommend", mock.Anything, prefs).Return(types.RecommendationSet{
			Items: []types.Recommendation{{Title: "Hyperion", Author: "Dan Simmons"}},
			Tier:  types.TierJSON,
		}, nil)

		w := f.do(http.MethodPost, "/v1/users/42/recommendations", `{"favorites":["Dune"],"genres":["sci-fi"]}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"books":[{"title":"Hyperion","author":"Dan Simmons"}],"degraded":false}`, w.Body.String())
	})

	t.Run("empty body means no preferences", func(t *testing.T) {
		f := newFixture()
		f.recs.On("Recommend", mock.Anything, types.Preferences{}).Return(types.RecommendationSet{
			Items:    service.DefaultRecommendations(),
			Degraded: true,
			Tier:     types.TierDefault,
		}, nil)

		w := f.do(http.MethodPost, "/v1/users/42/recommendations", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"degraded":true`)
	})

	t.Run("empty set renders an empty list", func(t *testing.T) {
		f := newFixture()
		f.recs.On("Recommend", mock.Anything, mock.Anything).Return(types.RecommendationSet{Tier: types.TierNone}, nil)

		w := f.do(http.MethodPost, "/v1/users/42/recommendations", `{}`)

		assert.JSONEq(t, `{"books":[],"degraded":false}`, w.Body.String())
	})

	t.Run("timeout is 504", func(t *testing.T) {
		f := newFixture()
		f.recs.On("Recommend", mock.Anything, mock.Anything).Return(types.RecommendationSet{}, service.ErrTimeout)

		w := f.do(http.MethodPost, "/v1/users/42/recommendations", `{}`)

		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
		assert.JSONEq(t, `{"error":"LLM timeout"}`, w.Body.String())
	})

	t.Run("upstream error is 502 without the body", func(t *testing.T) {
		f := newFixture()
		f.recs.On("Recommend", mock.Anything, mock.Anything).Return(types.RecommendationSet{},
			&service.UpstreamError{Kind: service.KindStatus, StatusCode: 503, Body: "provider internals"})

		w := f.do(http.MethodPost, "/v1/users/42/recommendations", `{}`)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.JSONEq(t, `{"error":"LLM upstream error","status":503}`, w.Body.String())
	})

	t.Run("bad user id is 400", func(t *testing.T) {
		f := newFixture()

		w := f.do(http.MethodPost, "/v1/users/abc/recommendations", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.recs.AssertNotCalled(t, "Recommend", mock.Anything, mock.Anything)
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		f := newFixture()

		w := f.do(http.MethodPost, "/v1/users/42/recommendations", `{"favorites":"Dune"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProfileRoutes(t *testing.T) {
	t.Run("missing profile is 404", func(t *testing.T) {
		f := newFixture()
		f.profiles.On("GetProfile", mock.Anything, int64(42)).Return(nil, service.ErrNotFound)

		w := f.do(http.MethodGet, "/v1/users/42/profile", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"profile_not_found"}`, w.Body.String())
	})

	t.Run("store failure is 500", func(t *testing.T) {
		f := newFixture()
		f.profiles.On("GetProfile", mock.Anything, int64(42)).Return(nil, errors.New("db down"))

		w := f.do(http.MethodGet, "/v1/users/42/profile", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("put upserts", func(t *testing.T) {
		f := newFixture()
		username := "reader"
		f.profiles.On("UpsertProfile", mock.Anything, int64(42), &types.ProfileInput{
			Username:        &username,
			Lang:            "en",
			PreferredGenres: []string{"sci-fi"},
		}).Return(&types.ProfileOutput{
			UserID:           42,
			Username:         "reader",
			Lang:             "en",
			PreferredGenres:  []string{"sci-fi"},
			PreferredAuthors: []string{},
		}, nil)

		w := f.do(http.MethodPut, "/v1/users/42/profile", `{"username":"reader","lang":"en","preferred_genres":["sci-fi"]}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":42`)
		assert.Contains(t, w.Body.String(), `"preferred_authors":[]`)
	})
}

func TestQuizRoutes(t *testing.T) {
	t.Run("missing quiz is 404", func(t *testing.T) {
		f := newFixture()
		f.quizzes.On("GetQuiz", mock.Anything, int64(42)).Return(nil, service.ErrNotFound)

		w := f.do(http.MethodGet, "/v1/users/42/quiz", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"quiz_not_found"}`, w.Body.String())
	})

	t.Run("save", func(t *testing.T) {
		f := newFixture()
		n := 0
		f.quizzes.On("SaveQuiz", mock.Anything, int64(42), &types.QuizInput{FavoriteBook: "Dune", BooksPerYear: &n}).
			Return(&types.QuizOutput{UserID: 42, FavoriteBook: "Dune", BooksPerYear: 0}, nil)

		w := f.do(http.MethodPost, "/v1/users/42/quiz", `{"q1_favorite_book":"Dune","q2_books_per_year":0}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":42,"q1_favorite_book":"Dune","q2_books_per_year":0}`, w.Body.String())
	})

	for name, body := range map[string]string{
		"missing book":     `{"q2_books_per_year":3}`,
		"missing count":    `{"q1_favorite_book":"Dune"}`,
		"negative count":   `{"q1_favorite_book":"Dune","q2_books_per_year":-1}`,
		"non-integer type": `{"q1_favorite_book":"Dune","q2_books_per_year":"many"}`,
	} {
		t.Run("invalid: "+name, func(t *testing.T) {
			f := newFixture()

			w := f.do(http.MethodPost, "/v1/users/42/quiz", body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			f.quizzes.AssertNotCalled(t, "SaveQuiz", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestConversationRoute(t *testing.T) {
	t.Run("reply", func(t *testing.T) {
		f := newFixture()
		f.convo.On("Handle", mock.Anything, int64(42), "/start").Return(conversation.Reply{Text: "hi"}, nil)

		w := f.do(http.MethodPost, "/v1/users/42/conversation", `{"text":"/start"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"text":"hi"}`, w.Body.String())
	})

	t.Run("store failure is 500", func(t *testing.T) {
		f := newFixture()
		f.convo.On("Handle", mock.Anything, int64(42), "Dune").Return(conversation.Reply{}, errors.New("redis down"))

		w := f.do(http.MethodPost, "/v1/users/42/conversation", `{"text":"Dune"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "redis")
	})
}

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("down") }

	newRouter := func(h *HealthHandler) *gin.Engine {
		r := gin.New()
		h.RegisterRoutes(r)
		return r
	}

	t.Run("root", func(t *testing.T) {
		r := newRouter(NewHealthHandler(ok, nil, nil))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.JSONEq(t, `{"ok":true,"service":"ai-book-backend"}`, w.Body.String())
	})

	t.Run("healthy", func(t *testing.T) {
		breaker := service.NewBreakerCompleter(nil, service.BreakerConfig{})
		r := newRouter(NewHealthHandler(ok, nil, breaker))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok","database":"ok","redis":"disabled","llm_breaker":"closed"}`, w.Body.String())
	})

	t.Run("dependency down", func(t *testing.T) {
		r := newRouter(NewHealthHandler(ok, down, nil))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"redis":"unavailable"`)
		assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	})
}
