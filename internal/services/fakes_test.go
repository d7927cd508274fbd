package services

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/internship-predictor/internal/models"
	"alfredoptarigan/internship-predictor/internal/repositories"
)

type fakeEmbedder struct {
	mu    sync.Mutex
	vec   []float32
	err   error
	calls int
	texts []string
}

func (f *fakeEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return cloneVector(f.vec), nil
}

type fakeIndex struct {
	mu        sync.Mutex
	hits      []SearchResult
	err       error
	lastLimit int
	searches  int
}

func (f *fakeIndex) SearchSimilar(_ context.Context, _ []float32, limit int) ([]SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches++
	f.lastLimit = limit
	return f.hits, f.err
}

type fakePDFParser struct {
	text string
	err  error
}

func (f fakePDFParser) ExtractTextFromBytes([]byte) (string, error) { return f.text, f.err }

type memStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{files: make(map[string][]byte)}
}

func (m *memStorage) Backend() string { return "memory" }

func (m *memStorage) SaveFile(_ context.Context, file *multipart.FileHeader, prefix string) (*StoredFile, error) {
	key, err := objectKey(file.Filename, prefix)
	if err != nil {
		return nil, err
	}
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(src); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = buf.Bytes()
	return &StoredFile{Key: key, Location: "mem://" + key, Size: int64(buf.Len()), ContentType: contentType(file)}, nil
}

func (m *memStorage) ReadFile(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[key]
	if !ok {
		return nil, fmt.Errorf("no file %s", key)
	}
	return data, nil
}

func (m *memStorage) DeleteFile(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, key)
	return nil
}

type memDocumentRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]models.Document
	err  error
}

func newMemDocumentRepo() *memDocumentRepo {
	return &memDocumentRepo{docs: make(map[uuid.UUID]models.Document)}
}

func (r *memDocumentRepo) Create(_ context.Context, doc *models.Document) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = *doc
	return nil
}

func (r *memDocumentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}

func (r *memDocumentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}

func (r *memDocumentRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, repositories.ErrNotFound)
	}
	return &doc, nil
}

type memPredictionRepo struct {
	mu    sync.Mutex
	preds map[uuid.UUID]models.Prediction

	createErr error
	resultErr error
}

func newMemPredictionRepo() *memPredictionRepo {
	return &memPredictionRepo{preds: make(map[uuid.UUID]models.Prediction)}
}

func (r *memPredictionRepo) Create(_ context.Context, p *models.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.preds[p.ID] = *p
	return nil
}

func (r *memPredictionRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.preds[id]
	if !ok {
		return nil, fmt.Errorf("prediction %s: %w", id, repositories.ErrNotFound)
	}
	return &p, nil
}

func (r *memPredictionRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.PredictionStatus) error {
	return r.mutate(id, func(p *models.Prediction) { p.Status = status })
}

func (r *memPredictionRepo) UpdateResult(_ context.Context, id uuid.UUID, data *repositories.PredictionUpdateData) error {
	r.mu.Lock()
	resultErr := r.resultErr
	r.mu.Unlock()
	if resultErr != nil {
		return resultErr
	}
	return r.mutate(id, func(p *models.Prediction) {
		p.Status = models.StatusCompleted
		p.PredictedInternship = &data.PredictedInternship
		p.Confidence = &data.Confidence
		p.Quality = &data.Quality
		p.TopPredictions = data.TopPredictions
		p.ExtractedFeatures = data.ExtractedFeatures
	})
}

func (r *memPredictionRepo) UpdateError(_ context.Context, id uuid.UUID, errorMsg string) error {
	return r.mutate(id, func(p *models.Prediction) {
		p.Status = models.StatusFailed
		p.ErrorMessage = &errorMsg
	})
}

func (r *memPredictionRepo) FindPendingJobs(_ context.Context, limit int) ([]models.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Prediction
	for _, p := range r.preds {
		if p.Status == models.StatusQueued && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPredictionRepo) status(id uuid.UUID) models.PredictionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.preds[id].Status
}

func (r *memPredictionRepo) mutate(id uuid.UUID, fn func(*models.Prediction)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.preds[id]
	if !ok {
		return fmt.Errorf("prediction %s: %w", id, repositories.ErrNotFound)
	}
	fn(&p)
	r.preds[id] = p
	return nil
}

// newFileHeader builds the header a multipart form upload of content would produce.
func newFileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("resume", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["resume"][0]
}
