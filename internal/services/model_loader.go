package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"alfredoptarigan/internship-predictor/internal/prediction"
)

// ModelBundle is the process-wide model state. Model and Schema are nil when
// no artifact was found.
type ModelBundle struct {
	Model       prediction.Model
	Schema      *prediction.Schema
	FeatureInfo *FeatureInfo
	// Version identifies the artifact contents.
	Version string
}

func (b *ModelBundle) Loaded() bool {
	return b != nil && b.Model != nil
}

// Analyzer returns prediction.ErrModelNotLoaded when no model is present.
func (b *ModelBundle) Analyzer() (*prediction.Analyzer, error) {
	if !b.Loaded() {
		return nil, prediction.ErrModelNotLoaded
	}
	return prediction.NewAnalyzer(b.Model, *b.Schema)
}

// KNNBackendFactory builds the embedding and index clients on demand, so they
// are only dialled when the artifact asks for them.
type KNNBackendFactory func(ctx context.Context) (Embedder, ResumeIndex, error)

type ModelLoader struct {
	ModelPath       string
	FeatureInfoPath string
	Neighbors       int
	NewKNNBackend   KNNBackendFactory
	Log             *zap.Logger
}

func (l ModelLoader) Load(ctx context.Context) (*ModelBundle, error) {
	bundle := &ModelBundle{}

	if l.FeatureInfoPath != "" {
		info, err := ReadFeatureInfo(l.FeatureInfoPath)
		switch {
		case err == nil:
			bundle.FeatureInfo = info
			l.Log.Info("feature info loaded", zap.Int("columns", len(info.AllColumns)))
		case errors.Is(err, fs.ErrNotExist):
			l.Log.Debug("no feature info file", zap.String("path", l.FeatureInfoPath))
		default:
			return nil, err
		}
	}

	data, err := os.ReadFile(l.ModelPath)
	if errors.Is(err, fs.ErrNotExist) {
		l.Log.Warn("no model found", zap.String("path", l.ModelPath))
		return bundle, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	sum := sha256.Sum256(data)
	bundle.Version = hex.EncodeToString(sum[:8])

	artifact, err := ReadModelArtifact(l.ModelPath)
	if err != nil {
		return nil, err
	}

	schema := artifact.Schema()
	if schema.FeatureColumns == nil && bundle.FeatureInfo != nil {
		schema.FeatureColumns = bundle.FeatureInfo.AllColumns
	}

	model, err := l.build(ctx, artifact)
	if err != nil {
		return nil, err
	}

	bundle.Model = model
	bundle.Schema = &schema

	l.Log.Info("model loaded",
		zap.String("model_type", schema.ModelType),
		zap.Int("classes", len(schema.ClassNames)),
		zap.Int("feature_columns", len(schema.FeatureColumns)),
		zap.String("version", bundle.Version),
	)
	return bundle, nil
}

func (l ModelLoader) build(ctx context.Context, artifact *ModelArtifact) (prediction.Model, error) {
	switch artifact.ModelType {
	case ModelTypeLinear:
		return NewLinearModel(artifact.ClassNames, artifact.Linear)
	case ModelTypeKNN:
		if l.NewKNNBackend == nil {
			return nil, fmt.Errorf("model type %s needs an embedding backend", artifact.ModelType)
		}
		embedder, index, err := l.NewKNNBackend(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to init knn backend: %w", err)
		}
		neighbors := l.Neighbors
		if artifact.KNN != nil && artifact.KNN.Neighbors > 0 {
			neighbors = artifact.KNN.Neighbors
		}
		return NewKNNModel(embedder, index, artifact.ClassNames, neighbors)
	default:
		return nil, fmt.Errorf("unsupported model type %q", artifact.ModelType)
	}
}
