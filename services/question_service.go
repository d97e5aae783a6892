package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quizapp/models"
	"quizapp/repositories"
)

type QuestionStore interface {
	List(ctx context.Context) ([]models.Question, error)
	ListForQuiz(ctx context.Context) ([]models.QuestionPublicView, error)
	Create(ctx context.Context, question *models.Question) error
	Update(ctx context.Context, id uint, fields map[string]interface{}) (*models.Question, error)
	Delete(ctx context.Context, id uint) error
	CorrectAnswers(ctx context.Context, ids []uint) (map[uint]string, error)
}

type QuestionInput struct {
	QuestionText  string `json:"question_text" binding:"required,min=5,max=500"`
	OptionA       string `json:"option_a" binding:"required,min=1,max=200"`
	OptionB       string `json:"option_b" binding:"required,min=1,max=200"`
	OptionC       string `json:"option_c" binding:"required,min=1,max=200"`
	OptionD       string `json:"option_d" binding:"required,min=1,max=200"`
	CorrectAnswer string `json:"correct_answer" binding:"required,oneof=A B C D"`
}

// QuestionPatch carries the fields of a partial update. Nil means unchanged.
type QuestionPatch struct {
	QuestionText  *string `json:"question_text" binding:"omitempty,min=5,max=500"`
	OptionA       *string `json:"option_a" binding:"omitempty,min=1,max=200"`
	OptionB       *string `json:"option_b" binding:"omitempty,min=1,max=200"`
	OptionC       *string `json:"option_c" binding:"omitempty,min=1,max=200"`
	OptionD       *string `json:"option_d" binding:"omitempty,min=1,max=200"`
	CorrectAnswer *string `json:"correct_answer" binding:"omitempty,oneof=A B C D"`
}

func (p QuestionPatch) fields() map[string]interface{} {
	fields := make(map[string]interface{})
	set := func(column string, v *string) {
		if v != nil {
			fields[column] = *v
		}
	}
	set("question_text", p.QuestionText)
	set("option_a", p.OptionA)
	set("option_b", p.OptionB)
	set("option_c", p.OptionC)
	set("option_d", p.OptionD)
	set("correct_answer", p.CorrectAnswer)
	return fields
}

type QuestionService struct {
	questions QuestionStore
}

func NewQuestionService(questions QuestionStore) *QuestionService {
	return &QuestionService{questions: questions}
}

func (s *QuestionService) List(ctx context.Context) ([]models.Question, error) {
	questions, err := s.questions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if questions == nil {
		questions = []models.Question{}
	}
	return questions, nil
}

func (s *QuestionService) Create(ctx context.Context, userID uint, in QuestionInput) (*models.Question, error) {
	if strings.TrimSpace(in.QuestionText) == "" {
		return nil, NewValidationError("question_text", `"question_text" is required`)
	}
	if !models.IsOptionTag(in.CorrectAnswer) {
		return nil, NewValidationError("correct_answer", `"correct_answer" must be one of [A, B, C, D]`)
	}

	question := &models.Question{
		QuestionText:  in.QuestionText,
		OptionA:       in.OptionA,
		OptionB:       in.OptionB,
		OptionC:       in.OptionC,
		OptionD:       in.OptionD,
		CorrectAnswer: in.CorrectAnswer,
		CreatedBy:     userID,
	}
	if err := s.questions.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return question, nil
}

func (s *QuestionService) Update(ctx context.Context, id uint, patch QuestionPatch) (*models.Question, error) {
	fields := patch.fields()
	if len(fields) == 0 {
		return nil, NewValidationError("", `"value" must have at least 1 key`)
	}
	if tag, ok := fields["correct_answer"]; ok && !models.IsOptionTag(tag.(string)) {
		return nil, NewValidationError("correct_answer", `"correct_answer" must be one of [A, B, C, D]`)
	}

	question, err := s.questions.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("update question %d: %w", id, err)
	}
	return question, nil
}

func (s *QuestionService) Delete(ctx context.Context, id uint) error {
	if err := s.questions.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("delete question %d: %w", id, err)
	}
	return nil
}
