package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/internship-predictor/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(predictionID uuid.UUID)
}

// JobProcessor runs one queued prediction to completion.
type JobProcessor interface {
	ProcessPrediction(ctx context.Context, id uuid.UUID) error
}

type worker struct {
	predRepo     repositories.PredictionRepository
	processor    JobProcessor
	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	log          *zap.Logger
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once

	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}
}

func NewWorker(
	predRepo repositories.PredictionRepository,
	processor JobProcessor,
	concurrency int,
	pollInterval time.Duration,
	log *zap.Logger,
) Worker {
	return &worker{
		predRepo:     predRepo,
		processor:    processor,
		jobQueue:     make(chan uuid.UUID, 100),
		concurrency:  max(concurrency, 1),
		pollInterval: pollInterval,
		log:          log,
		stopChan:     make(chan struct{}),
		inflight:     make(map[uuid.UUID]struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.log.Info("starting worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	if w.pollInterval > 0 {
		w.wg.Add(1)
		go w.pollPendingJobs(ctx)
	}
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("stopping worker")
		close(w.stopChan)
	})
	w.wg.Wait()
	w.log.Info("worker stopped")
}

// EnqueueJob implements Worker. Jobs already queued or running are skipped.
func (w *worker) EnqueueJob(predictionID uuid.UUID) {
	w.mu.Lock()
	if _, ok := w.inflight[predictionID]; ok {
		w.mu.Unlock()
		return
	}
	w.inflight[predictionID] = struct{}{}
	w.mu.Unlock()

	select {
	case w.jobQueue <- predictionID:
		w.log.Debug("job enqueued", zap.String("prediction_id", predictionID.String()))
	case <-w.stopChan:
		w.done(predictionID)
		w.log.Warn("worker stopped, cannot enqueue job", zap.String("prediction_id", predictionID.String()))
	}
}

func (w *worker) done(id uuid.UUID) {
	w.mu.Lock()
	delete(w.inflight, id)
	w.mu.Unlock()
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log := w.log.With(zap.Int("worker", workerID))

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case id := <-w.jobQueue:
			log.Info("processing job", zap.String("prediction_id", id.String()))
			if err := w.processor.ProcessPrediction(ctx, id); err != nil {
				log.Error("job failed", zap.String("prediction_id", id.String()), zap.Error(err))
			} else {
				log.Info("job completed", zap.String("prediction_id", id.String()))
			}
			w.done(id)
		}
	}
}

// pollPendingJobs re-enqueues queued rows, which covers jobs lost on restart.
func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := w.predRepo.FindPendingJobs(ctx, 10)
			if err != nil {
				w.log.Warn("failed to fetch pending jobs", zap.Error(err))
				continue
			}

			if len(pending) > 0 {
				w.log.Info("found pending jobs", zap.Int("count", len(pending)))
			}

			for _, job := range pending {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
