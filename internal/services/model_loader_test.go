package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"alfredoptarigan/internship-predictor/internal/prediction"
)

func linearArtifact() *ModelArtifact {
	return &ModelArtifact{
		ModelType:  ModelTypeLinear,
		ClassNames: twoClasses,
		Metrics:    map[string]float64{"accuracy": 0.91},
		Linear: &LinearParams{
			Intercepts:  []float64{0, 0},
			Passthrough: map[string][]float64{"skill_python": {2, -2}},
		},
	}
}

func writeArtifact(t *testing.T, dir string, artifact *ModelArtifact) string {
	t.Helper()
	path := filepath.Join(dir, "model.json")
	require.NoError(t, WriteJSONFile(path, artifact))
	return path
}

func TestModelLoaderMissingModel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	loader := ModelLoader{
		ModelPath:       filepath.Join(dir, "model.json"),
		FeatureInfoPath: filepath.Join(dir, "feature_info.json"),
		Log:             zaptest.NewLogger(t),
	}

	bundle, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, bundle.Loaded())
	assert.Nil(t, bundle.FeatureInfo)

	_, err = bundle.Analyzer()
	assert.ErrorIs(t, err, prediction.ErrModelNotLoaded)
}

func TestModelLoaderLinear(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	infoPath := filepath.Join(dir, "feature_info.json")
	require.NoError(t, WriteJSONFile(infoPath, FeatureInfo{AllColumns: []string{"resume_text", "skill_python"}}))

	loader := ModelLoader{
		ModelPath:       writeArtifact(t, dir, linearArtifact()),
		FeatureInfoPath: infoPath,
		Log:             zaptest.NewLogger(t),
	}

	bundle, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.True(t, bundle.Loaded())
	require.NotNil(t, bundle.FeatureInfo)
	assert.NotEmpty(t, bundle.Version)
	assert.Equal(t, ModelTypeLinear, bundle.Schema.ModelType)
	assert.Equal(t, []string{"resume_text", "skill_python"}, bundle.Schema.FeatureColumns, "feature info fills a missing column list")

	analyzer, err := bundle.Analyzer()
	require.NoError(t, err)

	result, _, err := analyzer.Analyze(context.Background(), "Python developer")
	require.NoError(t, err)
	assert.Equal(t, "Data Science", result.Label)
	assert.Equal(t, 98.2, result.Confidence)
	assert.Equal(t, prediction.QualityHigh, result.Quality)
}

func TestModelLoaderArtifactColumnsWin(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	artifact := linearArtifact()
	artifact.FeatureColumns = []string{"skill_python"}

	infoPath := filepath.Join(dir, "feature_info.json")
	require.NoError(t, WriteJSONFile(infoPath, FeatureInfo{AllColumns: []string{"word_count"}}))

	bundle, err := ModelLoader{
		ModelPath:       writeArtifact(t, dir, artifact),
		FeatureInfoPath: infoPath,
		Log:             zaptest.NewLogger(t),
	}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"skill_python"}, bundle.Schema.FeatureColumns)
}

func TestModelLoaderKNN(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeArtifact(t, dir, &ModelArtifact{
		ModelType:  ModelTypeKNN,
		ClassNames: knnClasses,
		KNN:        &KNNParams{Neighbors: 7},
	})

	t.Run("needs a backend", func(t *testing.T) {
		_, err := ModelLoader{ModelPath: path, Log: zaptest.NewLogger(t)}.Load(context.Background())
		assert.Error(t, err)
	})

	t.Run("backend failure", func(t *testing.T) {
		boom := errors.New("no api key")
		_, err := ModelLoader{
			ModelPath: path,
			Log:       zaptest.NewLogger(t),
			NewKNNBackend: func(context.Context) (Embedder, ResumeIndex, error) {
				return nil, nil, boom
			},
		}.Load(context.Background())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("artifact neighbours override the default", func(t *testing.T) {
		index := &fakeIndex{hits: []SearchResult{{Category: "Blockchain", Score: 0.8}}}
		bundle, err := ModelLoader{
			ModelPath: path,
			Neighbors: 15,
			Log:       zaptest.NewLogger(t),
			NewKNNBackend: func(context.Context) (Embedder, ResumeIndex, error) {
				return &fakeEmbedder{vec: []float32{1}}, index, nil
			},
		}.Load(context.Background())
		require.NoError(t, err)

		analyzer, err := bundle.Analyzer()
		require.NoError(t, err)
		result, _, err := analyzer.Analyze(context.Background(), "Solidity smart contracts")
		require.NoError(t, err)
		assert.Equal(t, "Blockchain", result.Label)
		assert.Equal(t, 100.0, result.Confidence)
		assert.Equal(t, 7, index.lastLimit)
	})
}

func TestModelLoaderRejectsBadArtifacts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	unknown := writeArtifact(t, dir, &ModelArtifact{ModelType: "random_forest", ClassNames: twoClasses})
	_, err := ModelLoader{ModelPath: unknown, Log: zaptest.NewLogger(t)}.Load(context.Background())
	assert.ErrorContains(t, err, "unsupported model type")

	garbled := filepath.Join(dir, "garbled.json")
	require.NoError(t, os.WriteFile(garbled, []byte("{"), 0o644))
	_, err = ModelLoader{ModelPath: garbled, Log: zaptest.NewLogger(t)}.Load(context.Background())
	assert.Error(t, err)

	untyped := filepath.Join(dir, "untyped.json")
	require.NoError(t, os.WriteFile(untyped, []byte(`{"class_names":["a"]}`), 0o644))
	_, err = ModelLoader{ModelPath: untyped, Log: zaptest.NewLogger(t)}.Load(context.Background())
	assert.ErrorContains(t, err, "model_type")
}
