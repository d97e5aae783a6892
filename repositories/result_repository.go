package repositories

import (
	"context"

	"quizapp/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResultRepository is the result store. Rows are insert-only.
type ResultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

func (r *ResultRepository) Create(ctx context.Context, result *models.QuizResult) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(result).Error
}

func (r *ResultRepository) ListByUser(ctx context.Context, userID uint) ([]models.QuizResult, error) {
	var results []models.QuizResult
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error
	return results, err
}

// BestByUser picks the highest score, breaking ties by the fastest attempt.
func (r *ResultRepository) BestByUser(ctx context.Context, userID uint) (*models.QuizResult, error) {
	var result models.QuizResult
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("score DESC").
		Order("time_taken ASC").
		First(&result).Error
	if err != nil {
		return nil, translate(err)
	}
	return &result, nil
}
