package models

import (
	"alfredoptarigan/internship-predictor/internal/prediction"
)

// PredictResponse is the body returned for a completed prediction.
type PredictResponse struct {
	PredictedInternship string                       `json:"predicted_internship"`
	ConfidenceLevel     string                       `json:"confidence_level"`
	PredictionQuality   string                       `json:"prediction_quality"`
	TopPredictions      []prediction.Ranked          `json:"top_predictions"`
	ExtractedFeatures   prediction.ExtractedFeatures `json:"extracted_features"`
	PredictionID        string                       `json:"prediction_id,omitempty"`
}

func NewPredictResponse(result *prediction.Result, extracted prediction.ExtractedFeatures) PredictResponse {
	return PredictResponse{
		PredictedInternship: result.Label,
		ConfidenceLevel:     prediction.FormatConfidence(result.Confidence),
		PredictionQuality:   string(result.Quality),
		TopPredictions:      result.Top,
		ExtractedFeatures:   extracted,
	}
}

type AnalyzeRequest struct {
	ResumeText string `json:"resume_text"`
}

type JobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type ResultResponse struct {
	ID           string           `json:"id"`
	Status       string           `json:"status"`
	Result       *PredictResponse `json:"result,omitempty"`
	ErrorMessage *string          `json:"error_message,omitempty"`
}

type HealthResponse struct {
	Status            string         `json:"status"`
	ModelLoaded       bool           `json:"model_loaded"`
	CompaniesLoaded   bool           `json:"companies_loaded"`
	FeatureInfoLoaded bool           `json:"feature_info_loaded"`
	ModelInfo         map[string]any `json:"model_info"`
}

// NewModelInfo describes a loaded schema. A nil schema yields an empty object.
func NewModelInfo(schema *prediction.Schema) map[string]any {
	info := map[string]any{}
	if schema == nil {
		return info
	}

	modelType := schema.ModelType
	if modelType == "" {
		modelType = "unknown"
	}
	classNames := schema.ClassNames
	if classNames == nil {
		classNames = []string{}
	}

	info["model_type"] = modelType
	info["class_names"] = classNames
	info["features_count"] = nil
	if schema.FeatureColumns != nil {
		info["features_count"] = len(schema.FeatureColumns)
	}
	if schema.Metrics != nil {
		info["f1_weighted"] = metric(schema.Metrics, "f1_weighted")
		info["precision_weighted"] = metric(schema.Metrics, "precision_weighted")
	}
	return info
}

func metric(metrics map[string]float64, name string) any {
	if v, ok := metrics[name]; ok {
		return v
	}
	return nil
}
