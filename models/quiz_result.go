package models

import "time"

// QuizResult is written once per submission and never updated.
type QuizResult struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"not null;index"`
	Score          int       `json:"score" gorm:"not null"`
	TotalQuestions int       `json:"total_questions" gorm:"not null"`
	CorrectAnswers int       `json:"correct_answers" gorm:"not null"`
	TimeTaken      int       `json:"time_taken" gorm:"not null"` // seconds
	CreatedAt      time.Time `json:"created_at"`

	// Relationships
	User User `json:"-"`
}
