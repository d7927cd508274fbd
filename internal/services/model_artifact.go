package services

import (
	"encoding/json"
	"fmt"
	"os"

	"alfredoptarigan/internship-predictor/internal/prediction"
)

const (
	ModelTypeLinear = "linear_softmax"
	ModelTypeKNN    = "knn_embedding"
)

// ModelArtifact is the on-disk description of a trained model.
type ModelArtifact struct {
	ModelType      string             `json:"model_type"`
	FeatureColumns []string           `json:"feature_columns,omitempty"`
	ClassNames     []string           `json:"class_names"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
	Linear         *LinearParams      `json:"linear,omitempty"`
	KNN            *KNNParams         `json:"knn,omitempty"`
}

type LinearParams struct {
	Intercepts []float64 `json:"intercepts"`
	// Numeric columns are standard-scaled before weighting.
	Numeric map[string]ScaledTerm `json:"numeric,omitempty"`
	// Passthrough columns are weighted as is.
	Passthrough map[string][]float64           `json:"passthrough,omitempty"`
	Text        *TextTerms                     `json:"text,omitempty"`
	Categorical map[string]map[string][]float64 `json:"categorical,omitempty"`
}

type ScaledTerm struct {
	Mean    float64   `json:"mean"`
	Scale   float64   `json:"scale"`
	Weights []float64 `json:"weights"`
}

type TextTerms struct {
	Column     string              `json:"column"`
	NgramMax   int                 `json:"ngram_max"`
	StopWords  []string            `json:"stop_words,omitempty"`
	Vocabulary map[string]TextTerm `json:"vocabulary"`
}

type TextTerm struct {
	IDF     float64   `json:"idf"`
	Weights []float64 `json:"weights"`
}

type KNNParams struct {
	Neighbors int `json:"neighbors"`
}

// FeatureInfo lists the columns of an exported training table.
type FeatureInfo struct {
	AllColumns []string `json:"all_columns"`
}

func (a *ModelArtifact) Schema() prediction.Schema {
	return prediction.Schema{
		ModelType:      a.ModelType,
		FeatureColumns: a.FeatureColumns,
		ClassNames:     a.ClassNames,
		Metrics:        a.Metrics,
	}
}

func ReadModelArtifact(path string) (*ModelArtifact, error) {
	var artifact ModelArtifact
	if err := readJSONFile(path, &artifact); err != nil {
		return nil, err
	}
	if artifact.ModelType == "" {
		return nil, fmt.Errorf("model artifact %s has no model_type", path)
	}
	return &artifact, nil
}

func ReadFeatureInfo(path string) (*FeatureInfo, error) {
	var info FeatureInfo
	if err := readJSONFile(path, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func WriteJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
