package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"alfredoptarigan/internship-predictor/internal/models"
)

type PredictionRepository interface {
	Create(ctx context.Context, p *models.Prediction) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.PredictionStatus) error
	UpdateResult(ctx context.Context, id uuid.UUID, data *PredictionUpdateData) error
	UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error
	FindPendingJobs(ctx context.Context, limit int) ([]models.Prediction, error)
}

type PredictionUpdateData struct {
	PredictedInternship string
	Confidence          float64
	Quality             string
	TopPredictions      datatypes.JSON
	ExtractedFeatures   datatypes.JSON
}

type predictionRepository struct {
	db *gorm.DB
}

func NewPredictionRepository(db *gorm.DB) PredictionRepository {
	return &predictionRepository{db: db}
}

func (r *predictionRepository) Create(ctx context.Context, p *models.Prediction) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create prediction: %w", err)
	}
	return nil
}

func (r *predictionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error) {
	var p models.Prediction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("prediction %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find prediction: %w", err)
	}
	return &p, nil
}

func (r *predictionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PredictionStatus) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	})
}

func (r *predictionRepository) UpdateResult(ctx context.Context, id uuid.UUID, data *PredictionUpdateData) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":               models.StatusCompleted,
		"predicted_internship": data.PredictedInternship,
		"confidence":           data.Confidence,
		"quality":              data.Quality,
		"top_predictions":      data.TopPredictions,
		"extracted_features":   data.ExtractedFeatures,
		"updated_at":           time.Now(),
	})
}

func (r *predictionRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": errorMsg,
		"updated_at":    time.Now(),
	})
}

func (r *predictionRepository) FindPendingJobs(ctx context.Context, limit int) ([]models.Prediction, error) {
	var preds []models.Prediction
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&preds).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}

	return preds, nil
}

func (r *predictionRepository) update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Prediction{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update prediction: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("prediction %s: %w", id, ErrNotFound)
	}

	return nil
}
