package services

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"alfredoptarigan/internship-predictor/internal/prediction"
)

var (
	ErrNoResume     = fmt.Errorf("%w: no resume uploaded", prediction.ErrMalformedUpload)
	ErrNotPDF       = fmt.Errorf("%w: only PDF files allowed", prediction.ErrMalformedUpload)
	ErrFileTooLarge = fmt.Errorf("%w: file too large", prediction.ErrMalformedUpload)
)

// ValidateUpload checks presence, extension and size in that order.
// maxSize <= 0 disables the size check.
func ValidateUpload(file *multipart.FileHeader, maxSize int64) error {
	if file == nil || file.Filename == "" {
		return ErrNoResume
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		return ErrNotPDF
	}
	if maxSize > 0 && file.Size > maxSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, file.Size, maxSize)
	}
	return nil
}
