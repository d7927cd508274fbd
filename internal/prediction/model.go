package prediction

import (
	"context"

	"alfredoptarigan/internship-predictor/internal/features"
)

// Model is a trained classifier over assembled feature rows.
type Model interface {
	Predict(ctx context.Context, row features.Vector) (string, error)
	// PredictProba returns one probability per class, aligned with Classes.
	PredictProba(ctx context.Context, row features.Vector) ([]float64, error)
	Classes() []string
}

// Schema describes the model a process loaded at startup.
type Schema struct {
	ModelType string `json:"model_type"`
	// FeatureColumns is nil when the model carries no expected layout.
	FeatureColumns []string           `json:"feature_columns,omitempty"`
	ClassNames     []string           `json:"class_names,omitempty"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
}

// Scorer is implemented by models that derive the label and the
// probabilities from a single evaluation of the row.
type Scorer interface {
	Score(ctx context.Context, row features.Vector) (string, []float64, error)
}
