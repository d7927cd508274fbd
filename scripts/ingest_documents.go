package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"alfredoptarigan/internship-predictor/internal/config"
	"alfredoptarigan/internship-predictor/internal/logger"
	"alfredoptarigan/internship-predictor/internal/services"
)

const embedRetries = 3

func main() {
	envFile := pflag.String("env-file", ".env", "path to an env file")
	dataset := pflag.String("dataset", "", "labelled resume CSV with Resume and Category columns")
	neighbors := pflag.Int("neighbors", 0, "neighbours per query stored in the artifact (0 uses KNN_NEIGHBORS)")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Server.LogFormat, cfg.Server.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *dataset == "" {
		log.Fatal("--dataset is required")
	}
	if *neighbors <= 0 {
		*neighbors = cfg.Model.Neighbors
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ingest(ctx, cfg, log, *dataset, *neighbors); err != nil {
		log.Fatal("ingestion failed", zap.Error(err))
	}
}

func ingest(ctx context.Context, cfg *config.Config, log *zap.Logger, datasetPath string, neighbors int) error {
	log.Info("starting resume ingestion", zap.String("dataset", datasetPath))

	f, err := os.Open(datasetPath)
	if err != nil {
		return err
	}
	records, err := services.ReadDataset(f)
	f.Close()
	if err != nil {
		return err
	}

	gemini, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.EmbeddingModel, log)
	if err != nil {
		return err
	}

	qdrant, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
	if err != nil {
		return err
	}
	if err := qdrant.InitCollection(ctx); err != nil {
		return fmt.Errorf("failed to initialize collection: %w", err)
	}

	report, err := services.IngestResumes(ctx, records, services.WithRetry(gemini, embedRetries), qdrant, log)
	if err != nil {
		return err
	}

	artifact := &services.ModelArtifact{
		ModelType:  services.ModelTypeKNN,
		ClassNames: report.Classes,
		KNN:        &services.KNNParams{Neighbors: neighbors},
	}
	if err := services.WriteJSONFile(cfg.Model.Path, artifact); err != nil {
		return err
	}

	log.Info("model artifact written",
		zap.String("path", cfg.Model.Path),
		zap.Int("classes", len(report.Classes)),
		zap.Int("neighbors", neighbors),
	)
	return nil
}
