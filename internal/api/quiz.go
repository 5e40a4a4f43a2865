package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/ai-book/backend/internal/service"
	"github.com/pageza/ai-book/backend/internal/types"
)

// QuizHandler serves /v1/users/:user_id/quiz
type QuizHandler struct {
	quizService service.IQuizService
}

// NewQuizHandler creates a QuizHandler
func NewQuizHandler(quizService service.IQuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

func (h *QuizHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/users/:user_id/quiz", h.GetQuiz)
	router.POST("/users/:user_id/quiz", h.SaveQuiz)
}

func (h *QuizHandler) GetQuiz(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.GetQuiz(c.Request.Context(), userID)
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "quiz_not_found"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

func (h *QuizHandler) SaveQuiz(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	var input types.QuizInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	quiz, err := h.quizService.SaveQuiz(c.Request.Context(), userID, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}
