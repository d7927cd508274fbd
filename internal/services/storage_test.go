package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/internship-predictor/internal/prediction"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "uploads")
	storage, err := NewStorageService(dir)
	require.NoError(t, err)
	assert.Equal(t, StorageLocal, storage.Backend())

	ctx := context.Background()
	header := newFileHeader(t, "My CV.PDF", []byte("%PDF-1.4 fake"))

	stored, err := storage.SaveFile(ctx, header, "resume")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.Key, "resume_"))
	assert.True(t, strings.HasSuffix(stored.Key, ".pdf"))
	assert.Equal(t, int64(len("%PDF-1.4 fake")), stored.Size)
	assert.Equal(t, filepath.Join(dir, stored.Key), stored.Location)

	data, err := storage.ReadFile(ctx, stored.Key)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))

	require.NoError(t, storage.DeleteFile(ctx, stored.Key))
	_, err = os.Stat(stored.Location)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorageRejectsNonPDF(t *testing.T) {
	t.Parallel()

	storage, err := NewStorageService(t.TempDir())
	require.NoError(t, err)

	_, err = storage.SaveFile(context.Background(), newFileHeader(t, "cv.docx", []byte("x")), "resume")
	assert.ErrorIs(t, err, ErrNotPDF)
	assert.ErrorIs(t, err, prediction.ErrMalformedUpload)
}

func TestLocalStorageKeysCannotEscape(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	storage, err := NewStorageService(dir)
	require.NoError(t, err)

	_, err = storage.ReadFile(context.Background(), "../../etc/passwd")
	assert.Error(t, err)
}

func TestValidateUpload(t *testing.T) {
	t.Parallel()

	pdf := newFileHeader(t, "resume.pdf", []byte("0123456789"))

	assert.NoError(t, ValidateUpload(pdf, 0))
	assert.NoError(t, ValidateUpload(pdf, 10))
	assert.ErrorIs(t, ValidateUpload(pdf, 9), ErrFileTooLarge)
	assert.ErrorIs(t, ValidateUpload(nil, 10), ErrNoResume)
	assert.ErrorIs(t, ValidateUpload(newFileHeader(t, "resume.txt", []byte("x")), 10), ErrNotPDF)
	assert.NoError(t, ValidateUpload(newFileHeader(t, "RESUME.Pdf", []byte("x")), 10))

	for _, err := range []error{ErrNoResume, ErrNotPDF, ErrFileTooLarge} {
		assert.ErrorIs(t, err, prediction.ErrMalformedUpload)
	}
}
