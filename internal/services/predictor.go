package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alfredoptarigan/internship-predictor/internal/features"
	"alfredoptarigan/internship-predictor/internal/models"
	"alfredoptarigan/internship-predictor/internal/prediction"
	"alfredoptarigan/internship-predictor/internal/repositories"
)

// ErrPersistenceDisabled is returned by operations that need a database.
var ErrPersistenceDisabled = errors.New("persistence disabled")

// Outcome is a prediction together with the signal summary shown to clients.
type Outcome struct {
	Result   *prediction.Result           `json:"result"`
	Features prediction.ExtractedFeatures `json:"features"`
}

type PredictorService interface {
	ModelLoaded() bool
	Schema() *prediction.Schema
	AnalyzeText(ctx context.Context, raw string) (*Outcome, error)
	AnalyzeDocument(ctx context.Context, data []byte) (*Outcome, error)
	// SubmitUpload stores the file and queues a prediction for it.
	SubmitUpload(ctx context.Context, file *multipart.FileHeader) (*models.Prediction, error)
	ProcessPrediction(ctx context.Context, id uuid.UUID) error
	// RecordOutcome saves a completed synchronous prediction. It is a no-op
	// returning nil when persistence is disabled.
	RecordOutcome(ctx context.Context, source models.PredictionSource, outcome *Outcome) (*models.Prediction, error)
	FindPrediction(ctx context.Context, id uuid.UUID) (*models.Prediction, error)
}

type PredictorOptions struct {
	Bundle      *ModelBundle
	PDFParser   PDFParserService
	Cache       PredictionCache
	Storage     StorageService
	PredRepo    repositories.PredictionRepository
	DocRepo     repositories.DocumentRepository
	MaxFileSize int64
	Log         *zap.Logger
}

type predictorService struct {
	analyzer    *prediction.Analyzer
	version     string
	pdfParser   PDFParserService
	cache       PredictionCache
	storage     StorageService
	predRepo    repositories.PredictionRepository
	docRepo     repositories.DocumentRepository
	maxFileSize int64
	log         *zap.Logger
}

func NewPredictorService(opts PredictorOptions) PredictorService {
	s := &predictorService{
		pdfParser:   opts.PDFParser,
		cache:       opts.Cache,
		storage:     opts.Storage,
		predRepo:    opts.PredRepo,
		docRepo:     opts.DocRepo,
		maxFileSize: opts.MaxFileSize,
		log:         opts.Log,
	}
	if s.pdfParser == nil {
		s.pdfParser = NewPDFParserService()
	}
	if s.cache == nil {
		s.cache = NewNoopCache()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if analyzer, err := opts.Bundle.Analyzer(); err == nil {
		s.analyzer = analyzer
		s.version = opts.Bundle.Version
	}
	return s
}

func (s *predictorService) ModelLoaded() bool {
	return s.analyzer != nil
}

func (s *predictorService) Schema() *prediction.Schema {
	if s.analyzer == nil {
		return nil
	}
	schema := s.analyzer.Schema()
	return &schema
}

func (s *predictorService) AnalyzeText(ctx context.Context, raw string) (*Outcome, error) {
	if s.analyzer == nil {
		return nil, prediction.ErrModelNotLoaded
	}

	// fold ligatures the same way training and ingestion do
	text := CleanText(raw)

	key := PredictionCacheKey(s.version, features.Normalize(text))
	if outcome, ok := s.cache.Get(ctx, key); ok {
		s.log.Debug("prediction cache hit", zap.String("key", key))
		return outcome, nil
	}

	result, analysis, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{Result: result, Features: prediction.Summarize(analysis)}
	s.cache.Set(ctx, key, outcome)

	s.log.Info("resume classified",
		zap.String("prediction", result.Label),
		zap.Float64("confidence", result.Confidence),
		zap.String("quality", string(result.Quality)),
	)
	return outcome, nil
}

func (s *predictorService) AnalyzeDocument(ctx context.Context, data []byte) (*Outcome, error) {
	if s.analyzer == nil {
		return nil, prediction.ErrModelNotLoaded
	}

	text, err := s.pdfParser.ExtractTextFromBytes(data)
	if err != nil {
		s.log.Warn("pdf text extraction failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", prediction.ErrEmptyText, err)
	}
	if text == "" {
		return nil, prediction.ErrEmptyText
	}

	return s.AnalyzeText(ctx, text)
}

func (s *predictorService) SubmitUpload(ctx context.Context, file *multipart.FileHeader) (*models.Prediction, error) {
	if s.predRepo == nil || s.docRepo == nil || s.storage == nil {
		return nil, ErrPersistenceDisabled
	}
	if s.analyzer == nil {
		return nil, prediction.ErrModelNotLoaded
	}
	if err := ValidateUpload(file, s.maxFileSize); err != nil {
		return nil, err
	}

	stored, err := s.storage.SaveFile(ctx, file, "resume")
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:               uuid.New(),
		Filename:         stored.Key,
		OriginalFileName: file.Filename,
		ContentType:      stored.ContentType,
		Size:             stored.Size,
		StorageBackend:   s.storage.Backend(),
		FilePath:         stored.Location,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		s.discardUpload(ctx, stored.Key)
		return nil, err
	}

	pred := &models.Prediction{
		ID:         uuid.New(),
		DocumentID: &doc.ID,
		Source:     models.SourceAsync,
		Status:     models.StatusQueued,
	}
	if err := s.predRepo.Create(ctx, pred); err != nil {
		if delErr := s.docRepo.Delete(ctx, doc.ID); delErr != nil {
			s.log.Warn("failed to clean up orphaned document", zap.String("document_id", doc.ID.String()), zap.Error(delErr))
		}
		s.discardUpload(ctx, stored.Key)
		return nil, err
	}

	s.log.Info("prediction queued",
		zap.String("prediction_id", pred.ID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.String("filename", file.Filename),
	)
	return pred, nil
}

func (s *predictorService) discardUpload(ctx context.Context, key string) {
	if err := s.storage.DeleteFile(ctx, key); err != nil {
		s.log.Warn("failed to clean up orphaned upload", zap.String("key", key), zap.Error(err))
	}
}

// ProcessPrediction leaves the job either completed or failed once it has
// been marked processing.
func (s *predictorService) ProcessPrediction(ctx context.Context, id uuid.UUID) error {
	if s.predRepo == nil || s.docRepo == nil || s.storage == nil {
		return ErrPersistenceDisabled
	}

	if err := s.predRepo.UpdateStatus(ctx, id, models.StatusProcessing); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	if err := s.completePrediction(ctx, id); err != nil {
		if updErr := s.predRepo.UpdateError(ctx, id, err.Error()); updErr != nil {
			s.log.Error("failed to record prediction error", zap.String("prediction_id", id.String()), zap.Error(updErr))
		}
		return err
	}
	return nil
}

func (s *predictorService) completePrediction(ctx context.Context, id uuid.UUID) error {
	outcome, err := s.processDocument(ctx, id)
	if err != nil {
		return err
	}

	data, err := updateData(outcome)
	if err != nil {
		return err
	}
	return s.predRepo.UpdateResult(ctx, id, data)
}

func (s *predictorService) processDocument(ctx context.Context, id uuid.UUID) (*Outcome, error) {
	pred, err := s.predRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pred.DocumentID == nil {
		return nil, fmt.Errorf("prediction %s has no document", id)
	}

	doc, err := s.docRepo.FindByID(ctx, *pred.DocumentID)
	if err != nil {
		return nil, err
	}

	data, err := s.storage.ReadFile(ctx, doc.Filename)
	if err != nil {
		return nil, err
	}

	return s.AnalyzeDocument(ctx, data)
}

func (s *predictorService) RecordOutcome(ctx context.Context, source models.PredictionSource, outcome *Outcome) (*models.Prediction, error) {
	if s.predRepo == nil {
		return nil, nil
	}

	data, err := updateData(outcome)
	if err != nil {
		return nil, err
	}

	pred := &models.Prediction{
		ID:                  uuid.New(),
		Source:              source,
		Status:              models.StatusCompleted,
		PredictedInternship: &data.PredictedInternship,
		Confidence:          &data.Confidence,
		Quality:             &data.Quality,
		TopPredictions:      data.TopPredictions,
		ExtractedFeatures:   data.ExtractedFeatures,
	}
	if err := s.predRepo.Create(ctx, pred); err != nil {
		return nil, err
	}
	return pred, nil
}

func (s *predictorService) FindPrediction(ctx context.Context, id uuid.UUID) (*models.Prediction, error) {
	if s.predRepo == nil {
		return nil, ErrPersistenceDisabled
	}
	return s.predRepo.FindByID(ctx, id)
}

func updateData(outcome *Outcome) (*repositories.PredictionUpdateData, error) {
	top, err := json.Marshal(outcome.Result.Top)
	if err != nil {
		return nil, fmt.Errorf("failed to encode predictions: %w", err)
	}
	extracted, err := json.Marshal(outcome.Features)
	if err != nil {
		return nil, fmt.Errorf("failed to encode features: %w", err)
	}
	return &repositories.PredictionUpdateData{
		PredictedInternship: outcome.Result.Label,
		Confidence:          outcome.Result.Confidence,
		Quality:             string(outcome.Result.Quality),
		TopPredictions:      datatypes.JSON(top),
		ExtractedFeatures:   datatypes.JSON(extracted),
	}, nil
}

// OutcomeFromRecord rebuilds an Outcome from a completed prediction row.
func OutcomeFromRecord(p *models.Prediction) (*Outcome, error) {
	if p.Status != models.StatusCompleted || p.PredictedInternship == nil {
		return nil, fmt.Errorf("prediction %s is %s", p.ID, p.Status)
	}

	result := &prediction.Result{Label: *p.PredictedInternship}
	if p.Confidence != nil {
		result.Confidence = *p.Confidence
	}
	if p.Quality != nil {
		result.Quality = prediction.Quality(*p.Quality)
	}
	if len(p.TopPredictions) > 0 {
		if err := json.Unmarshal(p.TopPredictions, &result.Top); err != nil {
			return nil, fmt.Errorf("failed to decode predictions: %w", err)
		}
	}

	outcome := &Outcome{Result: result}
	if len(p.ExtractedFeatures) > 0 {
		if err := json.Unmarshal(p.ExtractedFeatures, &outcome.Features); err != nil {
			return nil, fmt.Errorf("failed to decode features: %w", err)
		}
	}
	return outcome, nil
}
