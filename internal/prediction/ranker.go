package prediction

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"alfredoptarigan/internship-predictor/internal/features"
)

type Quality string

const (
	QualityHigh   Quality = "High"
	QualityMedium Quality = "Medium"
	QualityLow    Quality = "Low"
)

const topN = 3

type Ranked struct {
	Category    string  `json:"category"`
	Probability float64 `json:"probability"`
}

// Result is a ranked prediction. Confidence and probabilities are percentages
// rounded to two decimals.
type Result struct {
	Label      string   `json:"primary_prediction"`
	Confidence float64  `json:"confidence"`
	Top        []Ranked `json:"top_3_predictions"`
	Quality    Quality  `json:"prediction_quality"`
}

// Predict asks the model for a label and probabilities, then ranks them.
// A Scorer is evaluated once for both. Class names come from the model, then
// fallback, then the label.
func Predict(ctx context.Context, model Model, row features.Vector, fallback []string) (*Result, error) {
	if model == nil {
		return nil, ErrModelNotLoaded
	}

	label, probs, err := score(ctx, model, row)
	if err != nil {
		return nil, err
	}

	classes := model.Classes()
	if len(classes) == 0 {
		classes = fallback
	}
	if len(classes) == 0 {
		classes = []string{label}
	}

	return Rank(label, probs, classes)
}

func score(ctx context.Context, model Model, row features.Vector) (string, []float64, error) {
	if s, ok := model.(Scorer); ok {
		label, probs, err := s.Score(ctx, row)
		if err != nil {
			return "", nil, fmt.Errorf("failed to score row: %w", err)
		}
		return label, probs, nil
	}

	label, err := model.Predict(ctx, row)
	if err != nil {
		return "", nil, fmt.Errorf("failed to predict label: %w", err)
	}

	probs, err := model.PredictProba(ctx, row)
	if err != nil {
		return "", nil, fmt.Errorf("failed to predict probabilities: %w", err)
	}
	return label, probs, nil
}

// Rank orders classes by descending probability. Ties keep class order.
func Rank(label string, probs []float64, classes []string) (*Result, error) {
	if len(probs) == 0 {
		return nil, errors.New("empty probability vector")
	}
	if len(probs) != len(classes) {
		return nil, fmt.Errorf("got %d probabilities for %d classes", len(probs), len(classes))
	}

	order := make([]int, len(probs))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(probs[b], probs[a])
	})

	n := min(topN, len(order))
	top := make([]Ranked, 0, n)
	for _, idx := range order[:n] {
		top = append(top, Ranked{
			Category:    classes[idx],
			Probability: percent(probs[idx]),
		})
	}

	confidence := percent(slices.Max(probs))

	return &Result{
		Label:      label,
		Confidence: confidence,
		Top:        top,
		Quality:    QualityFor(confidence),
	}, nil
}

// QualityFor tiers a confidence percentage. Boundaries are exclusive.
func QualityFor(confidence float64) Quality {
	switch {
	case confidence > 70:
		return QualityHigh
	case confidence > 50:
		return QualityMedium
	default:
		return QualityLow
	}
}

// FormatConfidence renders a confidence the way the public API always has:
// shortest decimal form with at least one fractional digit, e.g. "83.5%".
func FormatConfidence(confidence float64) string {
	s := strconv.FormatFloat(confidence, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + "%"
}

// percent converts a probability to a percentage rounded once to two
// decimals from its exact binary value.
func percent(p float64) float64 {
	x := p * 100
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	if err != nil {
		return x
	}
	return rounded
}
