package prediction

import (
	"context"

	"alfredoptarigan/internship-predictor/internal/features"
)

// Analysis keeps the intermediate state of one prediction.
type Analysis struct {
	// Features holds the extracted signals plus the text pass-through columns.
	Features     features.Vector
	Row          features.Vector
	CategoryHits map[string][]string
}

// Analyzer turns raw resume text into a ranked prediction using a fixed
// model and schema. It is safe for concurrent use.
type Analyzer struct {
	model  Model
	schema Schema
}

func NewAnalyzer(model Model, schema Schema) (*Analyzer, error) {
	if model == nil {
		return nil, ErrModelNotLoaded
	}
	return &Analyzer{model: model, schema: schema}, nil
}

func (a *Analyzer) Schema() Schema {
	return a.schema
}

func (a *Analyzer) Analyze(ctx context.Context, raw string) (*Result, *Analysis, error) {
	cleaned := features.Normalize(raw)
	extraction := features.Extract(cleaned)

	vector := extraction.Vector.
		With(features.ColumnResumeText, cleaned).
		With(features.ColumnAcademicBackground, features.DefaultAcademicBackground)

	row := features.Assemble(vector, a.schema.FeatureColumns)

	result, err := Predict(ctx, a.model, row, a.schema.ClassNames)
	if err != nil {
		return nil, nil, err
	}

	return result, &Analysis{
		Features:     vector,
		Row:          row,
		CategoryHits: extraction.CategoryHits,
	}, nil
}
