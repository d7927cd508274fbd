package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	StorageLocal = "local"
	StorageMinIO = "minio"
)

// StoredFile describes an upload persisted by a StorageService.
type StoredFile struct {
	Key         string
	Location    string
	Size        int64
	ContentType string
}

type StorageService interface {
	SaveFile(ctx context.Context, file *multipart.FileHeader, prefix string) (*StoredFile, error)
	ReadFile(ctx context.Context, key string) ([]byte, error)
	DeleteFile(ctx context.Context, key string) error
	Backend() string
}

type storageService struct {
	uploadPath string
}

// NewStorageService keeps uploads on local disk under uploadPath.
func NewStorageService(uploadPath string) (StorageService, error) {
	s := &storageService{uploadPath: uploadPath}
	if err := os.MkdirAll(s.uploadPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return s, nil
}

func (s *storageService) Backend() string {
	return StorageLocal
}

func (s *storageService) SaveFile(_ context.Context, file *multipart.FileHeader, prefix string) (*StoredFile, error) {
	key, err := objectKey(file.Filename, prefix)
	if err != nil {
		return nil, err
	}
	filePath := s.path(key)

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &StoredFile{
		Key:         key,
		Location:    filePath,
		Size:        written,
		ContentType: contentType(file),
	}, nil
}

func (s *storageService) ReadFile(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (s *storageService) DeleteFile(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *storageService) path(key string) string {
	return filepath.Join(s.uploadPath, filepath.Base(key))
}

// objectKey validates the upload name and returns a unique <prefix>_<uuid>.pdf key.
func objectKey(filename, prefix string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".pdf" {
		return "", fmt.Errorf("%w: got %q", ErrNotPDF, ext)
	}
	return fmt.Sprintf("%s_%s%s", prefix, uuid.New().String(), ext), nil
}

func contentType(file *multipart.FileHeader) string {
	if ct := file.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/pdf"
}
