package models

import "time"

// QuizAnswer holds the latest quiz answers of a user
type QuizAnswer struct {
	UserID       int64     `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	FavoriteBook string    `gorm:"type:text" json:"q1_favorite_book"`
	BooksPerYear int       `gorm:"not null;default:0" json:"q2_books_per_year"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (QuizAnswer) TableName() string {
	return "quiz_answers"
}
