package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"alfredoptarigan/internship-predictor/internal/features"
)

var ErrNothingIngested = errors.New("no resumes were ingested")

// ResumeStore persists labelled resume embeddings by resume id.
type ResumeStore interface {
	UpsertResume(ctx context.Context, resumeID, category, text string, embedding []float32) error
	DeleteResume(ctx context.Context, resumeID string) error
}

type IngestReport struct {
	Stored int
	Failed int
	// Classes holds every stored category, sorted.
	Classes []string
}

// IngestResumeID names the point for dataset row i. Re-running an ingestion
// overwrites the same ids.
func IngestResumeID(row int) string {
	return fmt.Sprintf("resume_%d", row)
}

// IngestResumes embeds and stores every record. A row that cannot be stored
// has its point from an earlier run removed so it stops voting.
func IngestResumes(ctx context.Context, records []LabelledResume, embedder Embedder, store ResumeStore, log *zap.Logger) (*IngestReport, error) {
	report := &IngestReport{}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		id := IngestResumeID(i)
		if err := ingestOne(ctx, id, rec, embedder, store); err != nil {
			log.Error("failed to ingest resume", zap.Int("row", i), zap.Error(err))
			report.Failed++
			if err := store.DeleteResume(ctx, id); err != nil {
				log.Warn("failed to remove stale resume", zap.String("resume_id", id), zap.Error(err))
			}
			continue
		}

		if !slices.Contains(report.Classes, rec.Category) {
			report.Classes = append(report.Classes, rec.Category)
		}
		report.Stored++

		if report.Stored%50 == 0 {
			log.Info("progress", zap.Int("stored", report.Stored), zap.Int("total", len(records)))
		}
	}

	slices.Sort(report.Classes)
	log.Info("ingestion summary", zap.Int("successful", report.Stored), zap.Int("failed", report.Failed))
	if report.Stored == 0 {
		return report, ErrNothingIngested
	}
	return report, nil
}

func ingestOne(ctx context.Context, id string, rec LabelledResume, embedder Embedder, store ResumeStore) error {
	text := features.Normalize(CleanText(rec.Text))
	if text == "" {
		return fmt.Errorf("resume is empty after cleaning")
	}

	embedding, err := embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return err
	}

	return store.UpsertResume(ctx, id, rec.Category, text, embedding)
}

type retryingEmbedder struct {
	gemini     GeminiService
	maxRetries int
}

// WithRetry adapts a GeminiService so every embedding is retried.
func WithRetry(gemini GeminiService, maxRetries int) Embedder {
	return &retryingEmbedder{gemini: gemini, maxRetries: maxRetries}
}

func (r *retryingEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return r.gemini.GenerateEmbeddingWithRetry(ctx, text, r.maxRetries)
}
