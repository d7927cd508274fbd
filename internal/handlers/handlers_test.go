package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"alfredoptarigan/internship-predictor/internal/models"
	"alfredoptarigan/internship-predictor/internal/prediction"
	"alfredoptarigan/internship-predictor/internal/repositories"
	"alfredoptarigan/internship-predictor/internal/services"
)

type stubPredictor struct {
	loaded  bool
	schema  *prediction.Schema
	outcome *services.Outcome
	err     error

	submitted *models.Prediction
	submitErr error
	stored    map[uuid.UUID]*models.Prediction
	recordID  uuid.UUID

	lastText  string
	lastBytes []byte
}

func (s *stubPredictor) ModelLoaded() bool { return s.loaded }

func (s *stubPredictor) Schema() *prediction.Schema { return s.schema }

func (s *stubPredictor) AnalyzeText(_ context.Context, raw string) (*services.Outcome, error) {
	s.lastText = raw
	return s.outcome, s.err
}

func (s *stubPredictor) AnalyzeDocument(_ context.Context, data []byte) (*services.Outcome, error) {
	s.lastBytes = data
	return s.outcome, s.err
}

func (s *stubPredictor) SubmitUpload(_ context.Context, file *multipart.FileHeader) (*models.Prediction, error) {
	if err := services.ValidateUpload(file, 0); err != nil {
		return nil, err
	}
	return s.submitted, s.submitErr
}

func (s *stubPredictor) ProcessPrediction(context.Context, uuid.UUID) error { return nil }

func (s *stubPredictor) RecordOutcome(context.Context, models.PredictionSource, *services.Outcome) (*models.Prediction, error) {
	if s.recordID == uuid.Nil {
		return nil, nil
	}
	return &models.Prediction{ID: s.recordID}, nil
}

func (s *stubPredictor) FindPrediction(_ context.Context, id uuid.UUID) (*models.Prediction, error) {
	if p, ok := s.stored[id]; ok {
		return p, nil
	}
	return nil, repositories.ErrNotFound
}

type stubWorker struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (w *stubWorker) Start(context.Context) {}

func (w *stubWorker) Stop() {}

func (w *stubWorker) EnqueueJob(id uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ids = append(w.ids, id)
}

func sampleOutcome() *services.Outcome {
	return &services.Outcome{
		Result: &prediction.Result{
			Label:      "Data Science",
			Confidence: 83.5,
			Top: []prediction.Ranked{
				{Category: "Data Science", Probability: 83.5},
				{Category: "Web Development", Probability: 10},
				{Category: "Blockchain", Probability: 6.5},
			},
			Quality: prediction.QualityHigh,
		},
		Features: prediction.ExtractedFeatures{
			WordCount:           3,
			UniqueWords:         3,
			DetectedSkills:      []string{"python"},
			Education:           []string{},
			CategoryKeywordHits: map[string][]string{"Data Science": {"pandas"}},
		},
	}
}

func newTestApp(t *testing.T, predictor *stubPredictor, worker *stubWorker, maxFileSize int64) *fiber.App {
	t.Helper()
	log := zaptest.NewLogger(t)

	app := fiber.New(fiber.Config{
		BodyLimit:    BodyLimit(maxFileSize),
		ErrorHandler: NewErrorHandler(maxFileSize),
	})
	routes := Routes{
		Predict: NewPredictHandler(predictor, maxFileSize, log),
		Health:  NewHealthHandler(predictor, nil, false, worker != nil),
	}
	if worker != nil {
		routes.Upload = NewUploadHandler(predictor, worker, maxFileSize, log)
		routes.Result = NewResultHandler(predictor, log)
	}
	routes.Register(app)
	return app
}

func multipartRequest(t *testing.T, path, field, filename string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, w.WriteField("note", "no file"))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func doJSON(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]any) {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return resp.StatusCode, body
}

func TestUploadAndPredict(t *testing.T) {
	t.Parallel()

	recordID := uuid.New()
	predictor := &stubPredictor{loaded: true, outcome: sampleOutcome(), recordID: recordID}
	app := newTestApp(t, predictor, nil, 1<<20)

	for _, path := range []string{"/upload_and_predict", "/predict"} {
		status, body := doJSON(t, app, multipartRequest(t, path, "resume", "CV.PDF", []byte("%PDF-1.4")))
		require.Equal(t, fiber.StatusOK, status, path)

		assert.Equal(t, "Data Science", body["predicted_internship"])
		assert.Equal(t, "83.5%", body["confidence_level"])
		assert.Equal(t, "High", body["prediction_quality"])
		assert.Equal(t, recordID.String(), body["prediction_id"])
		assert.Len(t, body["top_predictions"], 3)

		extracted := body["extracted_features"].(map[string]any)
		assert.Equal(t, []any{"python"}, extracted["detected_skills"])
		assert.Equal(t, []any{}, extracted["education"])
		assert.Equal(t, false, extracted["has_projects"])
	}
	assert.Equal(t, []byte("%PDF-1.4"), predictor.lastBytes)
}

func TestUploadAndPredictErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		predictor *stubPredictor
		field     string
		filename  string
		content   string
		wantCode  int
		wantError string
	}{
		{
			name:      "model not loaded",
			predictor: &stubPredictor{},
			field:     "resume", filename: "cv.pdf", content: "%PDF",
			wantCode:  fiber.StatusInternalServerError,
			wantError: "Model not loaded",
		},
		{
			name:      "no resume",
			predictor: &stubPredictor{loaded: true},
			wantCode:  fiber.StatusBadRequest,
			wantError: "No resume uploaded",
		},
		{
			name:      "wrong field",
			predictor: &stubPredictor{loaded: true},
			field:     "cv", filename: "cv.pdf", content: "%PDF",
			wantCode:  fiber.StatusBadRequest,
			wantError: "No resume uploaded",
		},
		{
			name:      "not a pdf",
			predictor: &stubPredictor{loaded: true},
			field:     "resume", filename: "cv.docx", content: "PK",
			wantCode:  fiber.StatusBadRequest,
			wantError: "Only PDF files allowed",
		},
		{
			name:      "too large",
			predictor: &stubPredictor{loaded: true},
			field:     "resume", filename: "cv.pdf", content: strings.Repeat("x", 64),
			wantCode:  fiber.StatusBadRequest,
			wantError: "File too large. Max size: 32 bytes",
		},
		{
			name:      "empty text",
			predictor: &stubPredictor{loaded: true, err: prediction.ErrEmptyText},
			field:     "resume", filename: "cv.pdf", content: "%PDF",
			wantCode:  fiber.StatusBadRequest,
			wantError: "Failed to extract text",
		},
		{
			name:      "model failure",
			predictor: &stubPredictor{loaded: true, err: errors.New("boom")},
			field:     "resume", filename: "cv.pdf", content: "%PDF",
			wantCode:  fiber.StatusInternalServerError,
			wantError: "Enhanced prediction failed: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, tt.predictor, nil, 32)
			status, body := doJSON(t, app, multipartRequest(t, "/upload_and_predict", tt.field, tt.filename, []byte(tt.content)))
			assert.Equal(t, tt.wantCode, status)
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}

func TestUploadAndPredictWithoutMultipart(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &stubPredictor{loaded: true}, nil, 1<<20)
	req := httptest.NewRequest(http.MethodPost, "/upload_and_predict", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")

	status, body := doJSON(t, app, req)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "No resume uploaded", body["error"])
}

func TestUploadOverBodyLimit(t *testing.T) {
	t.Parallel()

	predictor := &stubPredictor{loaded: true, outcome: sampleOutcome()}
	app := newTestApp(t, predictor, nil, 1024)

	big := bytes.Repeat([]byte("a"), 3<<20)
	status, body := doJSON(t, app, multipartRequest(t, "/upload_and_predict", "resume", "cv.pdf", big))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "File too large. Max size: 1024 bytes", body["error"])
	assert.Nil(t, predictor.lastBytes)
}

func TestBodyLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1024+bodyOverhead, BodyLimit(1024))
	assert.Equal(t, math.MaxInt32, BodyLimit(0))
	assert.Equal(t, math.MaxInt32, BodyLimit(-1))
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	predictor := &stubPredictor{loaded: true, outcome: sampleOutcome()}
	app := newTestApp(t, predictor, nil, 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{"resume_text":"Python, pandas"}`))
	req.Header.Set("Content-Type", "application/json")

	status, body := doJSON(t, app, req)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Data Science", body["predicted_internship"])
	assert.NotContains(t, body, "prediction_id")
	assert.Equal(t, "Python, pandas", predictor.lastText)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{"resume_text":"   "}`))
	req.Header.Set("Content-Type", "application/json")
	status, body = doJSON(t, app, req)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "resume_text is required", body["error"])

	req = httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")
	status, body = doJSON(t, app, req)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid request payload", body["error"])
}

func TestHealth(t *testing.T) {
	t.Parallel()

	predictor := &stubPredictor{
		loaded: true,
		schema: &prediction.Schema{
			ModelType:      "linear_softmax",
			ClassNames:     []string{"Blockchain", "Data Science"},
			FeatureColumns: []string{"a", "b", "c"},
			Metrics:        map[string]float64{"f1_weighted": 0.9},
		},
	}
	app := newTestApp(t, predictor, nil, 1<<20)

	for _, path := range []string{"/health", "/api/v1/health"} {
		status, body := doJSON(t, app, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, true, body["model_loaded"])
		assert.Equal(t, false, body["companies_loaded"])
		assert.Equal(t, false, body["feature_info_loaded"])

		info := body["model_info"].(map[string]any)
		assert.Equal(t, "linear_softmax", info["model_type"])
		assert.Equal(t, float64(3), info["features_count"])
		assert.Equal(t, 0.9, info["f1_weighted"])
		assert.Contains(t, info, "precision_weighted")
		assert.Nil(t, info["precision_weighted"])
	}
}

func TestHealthWithoutModel(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &stubPredictor{}, nil, 1<<20)
	status, body := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["model_loaded"])
	assert.Equal(t, map[string]any{}, body["model_info"])
}

func TestHome(t *testing.T) {
	t.Parallel()

	status, body := doJSON(t, newTestApp(t, &stubPredictor{}, nil, 1<<20), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Enhanced Resume Internship Predictor API", body["message"])
	assert.Equal(t, "2.0", body["version"])
	endpoints := body["endpoints"].(map[string]any)
	assert.Contains(t, endpoints, "/upload_and_predict")
	assert.NotContains(t, endpoints, "/api/v1/predictions")
}

func TestAsyncRoutesNeedPersistence(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &stubPredictor{loaded: true}, nil, 1<<20)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/predictions/"+uuid.NewString(), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSubmitPrediction(t *testing.T) {
	t.Parallel()

	queued := &models.Prediction{ID: uuid.New(), Status: models.StatusQueued}
	predictor := &stubPredictor{loaded: true, submitted: queued}
	worker := &stubWorker{}
	app := newTestApp(t, predictor, worker, 1<<20)

	status, body := doJSON(t, app, multipartRequest(t, "/api/v1/predictions", "resume", "cv.pdf", []byte("%PDF")))
	require.Equal(t, fiber.StatusAccepted, status)
	assert.Equal(t, queued.ID.String(), body["id"])
	assert.Equal(t, "queued", body["status"])
	assert.Equal(t, []uuid.UUID{queued.ID}, worker.ids)

	status, body = doJSON(t, app, multipartRequest(t, "/api/v1/predictions", "resume", "cv.txt", []byte("x")))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Only PDF files allowed", body["error"])

	predictor.submitErr = errors.New("db down")
	status, body = doJSON(t, app, multipartRequest(t, "/api/v1/predictions", "resume", "cv.pdf", []byte("%PDF")))
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Failed to create prediction job", body["error"])
	assert.Len(t, worker.ids, 1)
}

func TestGetResult(t *testing.T) {
	t.Parallel()

	outcome := sampleOutcome()
	top, err := json.Marshal(outcome.Result.Top)
	require.NoError(t, err)
	extracted, err := json.Marshal(outcome.Features)
	require.NoError(t, err)

	label, confidence, quality := "Data Science", 83.5, "High"
	failure := "Failed to extract text"

	completed := &models.Prediction{
		ID:                  uuid.New(),
		Status:              models.StatusCompleted,
		PredictedInternship: &label,
		Confidence:          &confidence,
		Quality:             &quality,
		TopPredictions:      top,
		ExtractedFeatures:   extracted,
	}
	failed := &models.Prediction{ID: uuid.New(), Status: models.StatusFailed, ErrorMessage: &failure}
	queued := &models.Prediction{ID: uuid.New(), Status: models.StatusQueued}

	predictor := &stubPredictor{loaded: true, stored: map[uuid.UUID]*models.Prediction{
		completed.ID: completed,
		failed.ID:    failed,
		queued.ID:    queued,
	}}
	app := newTestApp(t, predictor, &stubWorker{}, 1<<20)

	get := func(id string) (int, map[string]any) {
		return doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/predictions/"+id, nil))
	}

	status, body := get(completed.ID.String())
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "completed", body["status"])
	result := body["result"].(map[string]any)
	assert.Equal(t, "83.5%", result["confidence_level"])
	assert.Equal(t, completed.ID.String(), result["prediction_id"])

	status, body = get(failed.ID.String())
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "failed", body["status"])
	assert.Equal(t, failure, body["error_message"])
	assert.NotContains(t, body, "result")

	status, body = get(queued.ID.String())
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "queued", body["status"])

	status, body = get("not-a-uuid")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid prediction ID format", body["error"])

	status, body = get(uuid.NewString())
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Prediction not found", body["error"])
}
