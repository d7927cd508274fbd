package services

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"alfredoptarigan/internship-predictor/internal/features"
	"alfredoptarigan/internship-predictor/internal/prediction"
)

type scaledColumn struct {
	name string
	ScaledTerm
}

type weightedColumn struct {
	name    string
	weights []float64
}

type categoricalColumn struct {
	name   string
	values map[string][]float64
}

// linearModel is a multinomial logistic classifier over an assembled row.
type linearModel struct {
	classes     []string
	intercepts  []float64
	numeric     []scaledColumn
	passthrough []weightedColumn
	categorical []categoricalColumn
	text        *TextTerms
	stopWords   map[string]struct{}
}

// NewLinearModel validates params against classes. Columns are visited in
// sorted order so scores do not depend on map iteration.
func NewLinearModel(classes []string, params *LinearParams) (prediction.Model, error) {
	if params == nil {
		return nil, fmt.Errorf("linear model has no parameters")
	}
	n := len(classes)
	if n == 0 {
		return nil, fmt.Errorf("linear model has no classes")
	}
	if len(params.Intercepts) != n {
		return nil, fmt.Errorf("got %d intercepts for %d classes", len(params.Intercepts), n)
	}

	m := &linearModel{
		classes:    slices.Clone(classes),
		intercepts: slices.Clone(params.Intercepts),
		text:       params.Text,
	}

	for _, name := range slices.Sorted(maps.Keys(params.Numeric)) {
		term := params.Numeric[name]
		if err := checkWeights(name, term.Weights, n); err != nil {
			return nil, err
		}
		m.numeric = append(m.numeric, scaledColumn{name: name, ScaledTerm: term})
	}

	for _, name := range slices.Sorted(maps.Keys(params.Passthrough)) {
		if err := checkWeights(name, params.Passthrough[name], n); err != nil {
			return nil, err
		}
		m.passthrough = append(m.passthrough, weightedColumn{name: name, weights: params.Passthrough[name]})
	}

	for _, name := range slices.Sorted(maps.Keys(params.Categorical)) {
		for value, weights := range params.Categorical[name] {
			if err := checkWeights(name+"="+value, weights, n); err != nil {
				return nil, err
			}
		}
		m.categorical = append(m.categorical, categoricalColumn{name: name, values: params.Categorical[name]})
	}

	if params.Text != nil {
		for term, tt := range params.Text.Vocabulary {
			if err := checkWeights("term "+term, tt.Weights, n); err != nil {
				return nil, err
			}
		}
		m.stopWords = make(map[string]struct{}, len(params.Text.StopWords))
		for _, w := range params.Text.StopWords {
			m.stopWords[w] = struct{}{}
		}
	}

	return m, nil
}

func checkWeights(name string, weights []float64, n int) error {
	if len(weights) != n {
		return fmt.Errorf("%s has %d weights for %d classes", name, len(weights), n)
	}
	return nil
}

func (m *linearModel) Classes() []string {
	return slices.Clone(m.classes)
}

func (m *linearModel) Predict(ctx context.Context, row features.Vector) (string, error) {
	label, _, err := m.Score(ctx, row)
	return label, err
}

// Score implements prediction.Scorer.
func (m *linearModel) Score(ctx context.Context, row features.Vector) (string, []float64, error) {
	probs, err := m.PredictProba(ctx, row)
	if err != nil {
		return "", nil, err
	}
	return m.classes[argmax(probs)], probs, nil
}

func (m *linearModel) PredictProba(ctx context.Context, row features.Vector) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores := slices.Clone(m.intercepts)

	for _, col := range m.numeric {
		x, _ := row.Float(col.name)
		scale := col.Scale
		if scale == 0 {
			scale = 1
		}
		addScaled(scores, col.Weights, (x-col.Mean)/scale)
	}

	for _, col := range m.passthrough {
		x, _ := row.Float(col.name)
		addScaled(scores, col.weights, x)
	}

	for _, col := range m.categorical {
		if weights, ok := col.values[row.Text(col.name)]; ok {
			addScaled(scores, weights, 1)
		}
	}

	if m.text != nil {
		m.addText(scores, row.Text(m.text.Column))
	}

	return softmax(scores), nil
}

// addText adds L2-normalised tf-idf weights of the row's 1..NgramMax-grams.
func (m *linearModel) addText(scores []float64, text string) {
	var words []string
	for _, w := range strings.Fields(text) {
		if len([]rune(w)) < 2 {
			continue
		}
		if _, stop := m.stopWords[w]; stop {
			continue
		}
		words = append(words, w)
	}

	maxN := max(m.text.NgramMax, 1)
	counts := make(map[string]float64)
	for n := 1; n <= maxN; n++ {
		for i := 0; i+n <= len(words); i++ {
			gram := strings.Join(words[i:i+n], " ")
			if _, ok := m.text.Vocabulary[gram]; ok {
				counts[gram]++
			}
		}
	}
	if len(counts) == 0 {
		return
	}

	terms := slices.Sorted(maps.Keys(counts))
	tfidf := make([]float64, len(terms))
	var norm float64
	for i, term := range terms {
		tfidf[i] = counts[term] * m.text.Vocabulary[term].IDF
		norm += tfidf[i] * tfidf[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}

	for i, term := range terms {
		addScaled(scores, m.text.Vocabulary[term].Weights, tfidf[i]/norm)
	}
}

func addScaled(scores, weights []float64, x float64) {
	if x == 0 {
		return
	}
	for c := range scores {
		scores[c] += weights[c] * x
	}
}

// argmax returns the first index of the largest value.
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

func softmax(scores []float64) []float64 {
	top := slices.Max(scores)
	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - top)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
