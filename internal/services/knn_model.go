package services

import (
	"context"
	"fmt"
	"slices"

	"alfredoptarigan/internship-predictor/internal/features"
	"alfredoptarigan/internship-predictor/internal/prediction"
)

// knnModel labels a resume by similarity-weighted votes of its nearest
// labelled neighbours in a vector index.
type knnModel struct {
	embedder   Embedder
	index      ResumeIndex
	classes    []string
	classIndex map[string]int
	neighbors  int
}

func NewKNNModel(embedder Embedder, index ResumeIndex, classes []string, neighbors int) (prediction.Model, error) {
	if embedder == nil || index == nil {
		return nil, fmt.Errorf("knn model needs an embedder and an index")
	}
	if len(classes) == 0 {
		return nil, fmt.Errorf("knn model has no classes")
	}
	if neighbors <= 0 {
		neighbors = 15
	}

	classIndex := make(map[string]int, len(classes))
	for i, c := range classes {
		classIndex[c] = i
	}

	return &knnModel{
		embedder:   embedder,
		index:      index,
		classes:    slices.Clone(classes),
		classIndex: classIndex,
		neighbors:  neighbors,
	}, nil
}

func (m *knnModel) Classes() []string {
	return slices.Clone(m.classes)
}

func (m *knnModel) Predict(ctx context.Context, row features.Vector) (string, error) {
	label, _, err := m.Score(ctx, row)
	return label, err
}

// Score implements prediction.Scorer with a single index search.
func (m *knnModel) Score(ctx context.Context, row features.Vector) (string, []float64, error) {
	probs, err := m.PredictProba(ctx, row)
	if err != nil {
		return "", nil, err
	}
	return m.classes[argmax(probs)], probs, nil
}

// PredictProba returns the normalised positive similarity mass per class.
// Without any usable neighbour the distribution is uniform.
func (m *knnModel) PredictProba(ctx context.Context, row features.Vector) ([]float64, error) {
	votes := make([]float64, len(m.classes))

	text := row.Text(features.ColumnResumeText)
	if text != "" {
		vec, err := m.embedder.GenerateEmbedding(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed resume: %w", err)
		}

		hits, err := m.index.SearchSimilar(ctx, vec, m.neighbors)
		if err != nil {
			return nil, fmt.Errorf("failed to search neighbours: %w", err)
		}

		for _, hit := range hits {
			idx, ok := m.classIndex[hit.Category]
			if !ok || hit.Score <= 0 {
				continue
			}
			votes[idx] += float64(hit.Score)
		}
	}

	var total float64
	for _, v := range votes {
		total += v
	}
	if total == 0 {
		for i := range votes {
			votes[i] = 1 / float64(len(votes))
		}
		return votes, nil
	}

	for i := range votes {
		votes[i] /= total
	}
	return votes, nil
}
