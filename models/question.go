package models

import "time"

// Option tags. A question references its correct option by tag, never by text.
const (
	OptionA = "A"
	OptionB = "B"
	OptionC = "C"
	OptionD = "D"
)

func IsOptionTag(tag string) bool {
	switch tag {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

type Question struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	QuestionText  string    `json:"question_text" gorm:"size:500;not null"`
	OptionA       string    `json:"option_a" gorm:"size:200;not null"`
	OptionB       string    `json:"option_b" gorm:"size:200;not null"`
	OptionC       string    `json:"option_c" gorm:"size:200;not null"`
	OptionD       string    `json:"option_d" gorm:"size:200;not null"`
	CorrectAnswer string    `json:"correct_answer" gorm:"type:char(1);not null;check:chk_questions_correct_answer,correct_answer IN ('A','B','C','D')"`
	CreatedBy     uint      `json:"created_by" gorm:"not null;index"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relationships
	Author User `json:"-" gorm:"foreignKey:CreatedBy"`
}

// QuestionPublicView is what quiz takers see: the correct tag is stripped.
type QuestionPublicView struct {
	ID           uint      `json:"id"`
	QuestionText string    `json:"question_text"`
	OptionA      string    `json:"option_a"`
	OptionB      string    `json:"option_b"`
	OptionC      string    `json:"option_c"`
	OptionD      string    `json:"option_d"`
	CreatedBy    uint      `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

func (q *Question) PublicView() QuestionPublicView {
	return QuestionPublicView{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		OptionA:      q.OptionA,
		OptionB:      q.OptionB,
		OptionC:      q.OptionC,
		OptionD:      q.OptionD,
		CreatedBy:    q.CreatedBy,
		CreatedAt:    q.CreatedAt,
	}
}
