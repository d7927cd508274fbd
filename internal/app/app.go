// Package app assembles the prediction services from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"alfredoptarigan/internship-predictor/internal/config"
	"alfredoptarigan/internship-predictor/internal/repositories"
	"alfredoptarigan/internship-predictor/internal/services"
)

const embeddingCacheSize = 1000

type Options struct {
	// Persistence connects the database, file storage and worker when a
	// driver is configured. Offline commands leave it off.
	Persistence bool
}

type App struct {
	Config    *config.Config
	Bundle    *services.ModelBundle
	Companies *services.CompanyDirectory
	Predictor services.PredictorService
	// Worker is nil when persistence is disabled.
	Worker services.Worker

	log     *zap.Logger
	closers []func() error
}

func Build(ctx context.Context, cfg *config.Config, log *zap.Logger, opts Options) (*App, error) {
	a := &App{Config: cfg, log: log}

	companies, err := services.LoadCompanies(cfg.Model.CompaniesPath)
	if err != nil {
		log.Warn("company list not loaded", zap.String("path", cfg.Model.CompaniesPath), zap.Error(err))
	} else {
		a.Companies = companies
		log.Info("company list loaded", zap.Int("companies", companies.Len()))
	}

	loader := services.ModelLoader{
		ModelPath:       cfg.Model.Path,
		FeatureInfoPath: cfg.Model.FeatureInfoPath,
		Neighbors:       cfg.Model.Neighbors,
		NewKNNBackend:   a.knnBackend,
		Log:             log,
	}
	a.Bundle, err = loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	predictorOpts := services.PredictorOptions{
		Bundle:      a.Bundle,
		PDFParser:   services.NewPDFParserService(),
		Cache:       a.cache(ctx),
		MaxFileSize: cfg.Storage.MaxFileSize,
		Log:         log,
	}

	var predRepo repositories.PredictionRepository
	if opts.Persistence && cfg.PersistenceEnabled() {
		db, err := config.InitDatabase(cfg, log)
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}

		storage, err := a.storage(ctx)
		if err != nil {
			_ = a.Close()
			return nil, err
		}

		predRepo = repositories.NewPredictionRepository(db)
		predictorOpts.Storage = storage
		predictorOpts.PredRepo = predRepo
		predictorOpts.DocRepo = repositories.NewDocumentRepository(db)
	}

	a.Predictor = services.NewPredictorService(predictorOpts)

	if predRepo != nil {
		a.Worker = services.NewWorker(predRepo, a.Predictor, cfg.Worker.Concurrency, cfg.Worker.PollInterval, log)
	}

	return a, nil
}

// Close releases connections opened by Build.
func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) knnBackend(ctx context.Context) (services.Embedder, services.ResumeIndex, error) {
	cfg := a.Config
	if cfg.Gemini.APIKey == "" {
		return nil, nil, fmt.Errorf("GEMINI_API_KEY is required for %s models", services.ModelTypeKNN)
	}

	gemini, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.EmbeddingModel, a.log)
	if err != nil {
		return nil, nil, err
	}

	qdrant, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, a.log)
	if err != nil {
		return nil, nil, err
	}

	return services.NewCachedEmbedder(gemini, embeddingCacheSize), qdrant, nil
}

func (a *App) cache(ctx context.Context) services.PredictionCache {
	cfg := a.Config.Cache
	if cfg.RedisAddr == "" {
		return services.NewNoopCache()
	}

	cache, err := services.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.TTL, a.log)
	if err != nil {
		a.log.Warn("prediction cache disabled", zap.Error(err))
		return services.NewNoopCache()
	}

	if closer, ok := cache.(io.Closer); ok {
		a.closers = append(a.closers, closer.Close)
	}
	a.log.Info("prediction cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.TTL))
	return cache
}

func (a *App) storage(ctx context.Context) (services.StorageService, error) {
	cfg := a.Config.Storage
	switch cfg.Backend {
	case services.StorageLocal, "":
		return services.NewStorageService(cfg.UploadPath)
	case services.StorageMinIO:
		return services.NewMinIOStorage(ctx, cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.Bucket, cfg.MinIO.UseSSL)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}
