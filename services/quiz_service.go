package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"quizapp/models"
	"quizapp/repositories"
)

type ResultStore interface {
	Create(ctx context.Context, result *models.QuizResult) error
	ListByUser(ctx context.Context, userID uint) ([]models.QuizResult, error)
	BestByUser(ctx context.Context, userID uint) (*models.QuizResult, error)
}

// ResultPublisher is notified after a result has been stored.
type ResultPublisher interface {
	PublishResult(userID uint, summary ResultSummary)
}

type Answer struct {
	QuestionID uint   `json:"questionId" binding:"required,gt=0"`
	Answer     string `json:"answer" binding:"required,oneof=A B C D"`
}

type Submission struct {
	Answers   []Answer `json:"answers" binding:"required,min=1,dive"`
	TimeTaken int      `json:"timeTaken" binding:"required,min=1"`
}

type ResultSummary struct {
	ID             uint `json:"id"`
	Score          int  `json:"score"`
	TotalQuestions int  `json:"totalQuestions"`
	CorrectAnswers int  `json:"correctAnswers"`
	TimeTaken      int  `json:"timeTaken"`
}

type QuizService struct {
	questions QuestionStore
	results   ResultStore
	publisher ResultPublisher
}

func NewQuizService(questions QuestionStore, results ResultStore, publisher ResultPublisher) *QuizService {
	return &QuizService{
		questions: questions,
		results:   results,
		publisher: publisher,
	}
}

// StartQuiz returns every question, shuffled, without correct tags.
func (s *QuizService) StartQuiz(ctx context.Context) ([]models.QuestionPublicView, error) {
	questions, err := s.questions.ListForQuiz(ctx)
	if err != nil {
		return nil, fmt.Errorf("load quiz questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestionsAvailable
	}
	return questions, nil
}

func (s *QuizService) Submit(ctx context.Context, userID uint, sub Submission) (*ResultSummary, error) {
	if len(sub.Answers) == 0 {
		return nil, NewValidationError("answers", `"answers" must contain at least 1 items`)
	}
	if sub.TimeTaken < 1 {
		return nil, NewValidationError("timeTaken", `"timeTaken" must be greater than or equal to 1`)
	}

	seen := make(map[uint]struct{}, len(sub.Answers))
	ids := make([]uint, 0, len(sub.Answers))
	for _, a := range sub.Answers {
		if _, ok := seen[a.QuestionID]; ok {
			continue
		}
		seen[a.QuestionID] = struct{}{}
		ids = append(ids, a.QuestionID)
	}

	correctTags, err := s.questions.CorrectAnswers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load correct answers: %w", err)
	}

	correct := CountCorrect(sub.Answers, correctTags)
	total := len(sub.Answers)

	result := &models.QuizResult{
		UserID:         userID,
		Score:          Score(correct, total),
		TotalQuestions: total,
		CorrectAnswers: correct,
		TimeTaken:      sub.TimeTaken,
	}
	if err := s.results.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("save quiz result: %w", err)
	}

	summary := summarize(result)
	if s.publisher != nil {
		s.publisher.PublishResult(userID, summary)
	}
	return &summary, nil
}

func (s *QuizService) Results(ctx context.Context, userID uint) ([]models.QuizResult, error) {
	results, err := s.results.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	if results == nil {
		results = []models.QuizResult{}
	}
	return results, nil
}

func (s *QuizService) BestResult(ctx context.Context, userID uint) (*models.QuizResult, error) {
	result, err := s.results.BestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("best result: %w", err)
	}
	return result, nil
}

// CountCorrect scores every submitted pair on its own, so a repeated
// question id counts once per occurrence. Unknown ids never match.
func CountCorrect(answers []Answer, correctTags map[uint]string) int {
	correct := 0
	for _, a := range answers {
		if tag, ok := correctTags[a.QuestionID]; ok && tag == a.Answer {
			correct++
		}
	}
	return correct
}

// Score is the rounded percentage of correct answers, 0 when total is 0.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

func summarize(r *models.QuizResult) ResultSummary {
	return ResultSummary{
		ID:             r.ID,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		CorrectAnswers: r.CorrectAnswers,
		TimeTaken:      r.TimeTaken,
	}
}
