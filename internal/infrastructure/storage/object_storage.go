// Package storage provides object storage implementations for project documents.
package storage

import (
	"context"
	"time"
)

// ObjectStorage abstracts the document store. Handlers never stream file
// bytes through the API process; clients upload and download directly via
// presigned URLs.
type ObjectStorage interface {
	GenerateUploadURL(ctx context.Context, objectKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, objectKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, objectKey string) error
	ObjectExists(ctx context.Context, objectKey string) (bool, error)
}
