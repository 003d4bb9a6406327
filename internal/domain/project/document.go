package project

import (
	"strings"
	"time"

	"github.com/clientportal/backend/internal/domain/shared"
)

// Document records a file uploaded against a project. The bytes live in
// object storage; only the metadata is kept locally.
type Document struct {
	shared.BaseEntity
	ProjectID   uint   `gorm:"index;not null"`
	FileName    string `gorm:"type:varchar(255);not null"`
	ObjectKey   string `gorm:"type:varchar(512);not null;uniqueIndex"`
	ContentType string `gorm:"type:varchar(100)"`
	SizeBytes   int64  `gorm:"not null;default:0"`
	UploadedBy  uint   `gorm:"index;not null"`
}

// TableName returns the table name for GORM
func (Document) TableName() string {
	return "project_documents"
}

// NewDocument creates document metadata for an uploaded file
func NewDocument(projectID, uploadedBy uint, fileName, objectKey, contentType string, sizeBytes int64) (*Document, error) {
	if projectID == 0 {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Document must belong to a project")
	}
	if strings.TrimSpace(fileName) == "" {
		return nil, shared.NewDomainError("INVALID_FILENAME", "File name cannot be empty")
	}
	if len(fileName) > 255 {
		return nil, shared.NewDomainError("INVALID_FILENAME", "File name cannot exceed 255 characters")
	}
	if strings.TrimSpace(objectKey) == "" {
		return nil, shared.NewDomainError("INVALID_OBJECT_KEY", "Object key cannot be empty")
	}
	if sizeBytes < 0 {
		return nil, shared.NewDomainError("INVALID_SIZE", "File size cannot be negative")
	}
	now := time.Now()
	return &Document{
		BaseEntity:  shared.BaseEntity{CreatedAt: now, UpdatedAt: now},
		ProjectID:   projectID,
		FileName:    fileName,
		ObjectKey:   objectKey,
		ContentType: contentType,
		SizeBytes:   sizeBytes,
		UploadedBy:  uploadedBy,
	}, nil
}
