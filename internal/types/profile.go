package types

import "time"

// ProfileInput is the body of PUT /v1/users/:user_id/profile.
// First and last name are accepted from the bot and stored as-is.
type ProfileInput struct {
	Username         *string  `json:"username"`
	FirstName        *string  `json:"first_name"`
	LastName         *string  `json:"last_name"`
	Lang             string   `json:"lang"`
	PreferredGenres  []string `json:"preferred_genres"`
	PreferredAuthors []string `json:"preferred_authors"`
}

// ProfileOutput is the API view of a stored profile
type ProfileOutput struct {
	UserID           int64     `json:"user_id"`
	Username         string    `json:"username,omitempty"`
	FirstName        string    `json:"first_name,omitempty"`
	LastName         string    `json:"last_name,omitempty"`
	Lang             string    `json:"lang"`
	PreferredGenres  []string  `json:"preferred_genres"`
	PreferredAuthors []string  `json:"preferred_authors"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// QuizInput is the body of POST /v1/users/:user_id/quiz
type QuizInput struct {
	FavoriteBook string `json:"q1_favorite_book" binding:"required"`
	BooksPerYear *int   `json:"q2_books_per_year" binding:"required,min=0"`
}

// QuizOutput is the API view of stored quiz answers
type QuizOutput struct {
	UserID       int64  `json:"user_id"`
	FavoriteBook string `json:"q1_favorite_book,omitempty"`
	BooksPerYear int    `json:"q2_books_per_year"`
}
