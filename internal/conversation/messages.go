package conversation

import (
	"fmt"
	"strings"

	"github.com/pageza/ai-book/backend/internal/types"
)

// Menu labels double as commands
const (
	ButtonRecommendations = "📚 Рекомендации"
	ButtonQuiz            = "🧩 Викторина"
	ButtonProfile         = "👤 Профиль"
)

const (
	msgGreeting       = "Привет! Выбери действие:"
	msgCancelled      = "Хорошо, отменил. Выбери действие:"
	msgMenuHint       = "Выбери действие в меню: " + ButtonRecommendations + ", " + ButtonQuiz + " или " + ButtonProfile
	msgProfileEmpty   = "Профиль пока пуст. Пройди «" + ButtonRecommendations + "» или «" + ButtonQuiz + "»."
	msgProfileFailed  = "Не удалось получить профиль, попробуй позже."
	msgAskBooks       = "Напиши 2–3 любимые книги через запятую (например: Маленький принц, Дюна, Три товарища)"
	msgAskGenres      = "Окей! Теперь жанры (через запятую): фантастика, классика, детектив ..."
	msgAskAuthors     = "И пару любимых авторов (через запятую), или '-' если нет:"
	msgNothingToShow  = "Пока нечего посоветовать 😔"
	msgRecommendError = "Не удалось получить рекомендации, попробуй ещё раз."
	msgRateLimited    = "Слишком много запросов рекомендаций. Попробуй позже."
	msgAskFavorite    = "Вопрос 1: Какая твоя любимая книга?"
	msgAskBooksPerYr  = "Вопрос 2: Сколько книг ты читаешь в год? (цифрой)"
	msgNeedNumber     = "Нужно число. Например: 5"
	msgQuizSaveFailed = "Не удалось сохранить результаты викторины, попробуй ещё раз."
	msgQuizDone       = "Готово! Теперь можешь нажать «" + ButtonRecommendations + "». Я буду учитывать твою любимую книгу."
)

// RenderBooks formats recommendations one block per book
func RenderBooks(books []types.Recommendation) string {
	blocks := make([]string, 0, len(books))
	for _, b := range books {
		line := "📖 " + b.Title
		if b.Author != "" {
			line += " — " + b.Author
		}
		if b.Reason != "" {
			line += "\nℹ " + b.Reason
		}
		blocks = append(blocks, line)
	}
	return strings.Join(blocks, "\n\n")
}

// RenderProfile formats a stored profile
func RenderProfile(p *types.ProfileOutput) string {
	name := strings.TrimSpace(orDash(p.FirstName) + " " + p.LastName)
	lang := p.Lang
	if lang == "" {
		lang = "ru"
	}
	return fmt.Sprintf("Профиль:\nИмя: %s\nЯзык: %s\nЖанры: %s\nАвторы: %s",
		name,
		lang,
		orDash(strings.Join(p.PreferredGenres, ", ")),
		orDash(strings.Join(p.PreferredAuthors, ", ")),
	)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
