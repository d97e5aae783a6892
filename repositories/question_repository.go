package repositories

import (
	"context"

	"quizapp/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuestionRepository is the question store.
type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) List(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&questions).Error
	return questions, err
}

// ListForQuiz returns every question in a fresh random order without the
// correct_answer column ever leaving the database.
func (r *QuestionRepository) ListForQuiz(ctx context.Context) ([]models.QuestionPublicView, error) {
	var views []models.QuestionPublicView
	err := r.db.WithContext(ctx).Model(&models.Question{}).
		Select("id", "question_text", "option_a", "option_b", "option_c", "option_d", "created_by", "created_at").
		Order("RANDOM()").
		Find(&views).Error
	return views, err
}

func (r *QuestionRepository) FindByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, translate(err)
	}
	return &question, nil
}

func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(question).Error)
}

// Update applies the given column values and returns the stored row.
func (r *QuestionRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) (*models.Question, error) {
	res := r.db.WithContext(ctx).Model(&models.Question{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *QuestionRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Question{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CorrectAnswers fetches the correct tag of every listed id in one round
// trip. Ids with no stored question are absent from the result.
func (r *QuestionRepository) CorrectAnswers(ctx context.Context, ids []uint) (map[uint]string, error) {
	answers := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return answers, nil
	}

	params := make([]int64, len(ids))
	for i, id := range ids {
		params[i] = int64(id)
	}

	var rows []struct {
		ID            uint
		CorrectAnswer string
	}
	err := r.db.WithContext(ctx).Model(&models.Question{}).
		Select("id", "correct_answer").
		Where("id = ANY(?)", pq.Array(params)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		answers[row.ID] = row.CorrectAnswer
	}
	return answers, nil
}

func (r *QuestionRepository) ExistsByText(ctx context.Context, text string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("question_text = ?", text).
		Count(&count).Error
	return count > 0, err
}
