package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded resume file kept on a storage backend.
type Document struct {
	ID               uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Filename         string    `gorm:"type:varchar(255)" json:"filename"`
	OriginalFileName string    `gorm:"type:varchar(255)" json:"original_filename"`
	ContentType      string    `gorm:"type:varchar(100)" json:"content_type"`
	Size             int64     `json:"size"`
	StorageBackend   string    `gorm:"type:varchar(16)" json:"storage_backend"`
	FilePath         string    `gorm:"type:text" json:"file_path"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (d *Document) TableName() string {
	return "documents"
}
