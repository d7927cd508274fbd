package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PredictionStatus string

const (
	StatusQueued     PredictionStatus = "queued"
	StatusProcessing PredictionStatus = "processing"
	StatusCompleted  PredictionStatus = "completed"
	StatusFailed     PredictionStatus = "failed"
)

type PredictionSource string

const (
	SourceUpload PredictionSource = "upload"
	SourceText   PredictionSource = "text"
	SourceAsync  PredictionSource = "async"
)

type Prediction struct {
	ID                  uuid.UUID        `gorm:"type:char(36);primaryKey" json:"id"`
	DocumentID          *uuid.UUID       `gorm:"type:char(36);index" json:"document_id,omitempty"`
	Source              PredictionSource `gorm:"type:varchar(16);not null" json:"source"`
	Status              PredictionStatus `gorm:"type:varchar(16);not null;default:'queued';index" json:"status"`
	PredictedInternship *string          `gorm:"type:varchar(255)" json:"predicted_internship,omitempty"`
	Confidence          *float64         `json:"confidence,omitempty"`
	Quality             *string          `gorm:"type:varchar(16)" json:"prediction_quality,omitempty"`
	TopPredictions      datatypes.JSON   `json:"top_predictions,omitempty"`
	ExtractedFeatures   datatypes.JSON   `json:"extracted_features,omitempty"`
	ErrorMessage        *string          `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`

	Document *Document `gorm:"foreignKey:DocumentID" json:"-"`
}

func (Prediction) TableName() string {
	return "predictions"
}
