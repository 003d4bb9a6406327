package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var _ ObjectStorage = (*StubObjectStorage)(nil)

// StubObjectStorage is an in-memory ObjectStorage for development and tests.
// URLs it returns are synthetic and not fetchable.
type StubObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]bool
}

// NewStubObjectStorage creates an empty stub store
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{objects: make(map[string]bool)}
}

// GenerateUploadURL implements ObjectStorage and marks the key as present
func (s *StubObjectStorage) GenerateUploadURL(ctx context.Context, objectKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	if objectKey == "" {
		return "", time.Time{}, errors.New("object key is required")
	}
	if expiresIn <= 0 {
		expiresIn = defaultPresignExpiration
	}
	s.mu.Lock()
	s.objects[objectKey] = true
	s.mu.Unlock()
	return fmt.Sprintf("stub://upload/%s", objectKey), time.Now().Add(expiresIn), nil
}

// GenerateDownloadURL implements ObjectStorage
func (s *StubObjectStorage) GenerateDownloadURL(ctx context.Context, objectKey string, expiresIn time.Duration) (string, time.Time, error) {
	if objectKey == "" {
		return "", time.Time{}, errors.New("object key is required")
	}
	if expiresIn <= 0 {
		expiresIn = defaultPresignExpiration
	}
	return fmt.Sprintf("stub://download/%s", objectKey), time.Now().Add(expiresIn), nil
}

// DeleteObject implements ObjectStorage
func (s *StubObjectStorage) DeleteObject(ctx context.Context, objectKey string) error {
	if objectKey == "" {
		return errors.New("object key is required")
	}
	s.mu.Lock()
	delete(s.objects, objectKey)
	s.mu.Unlock()
	return nil
}

// ObjectExists implements ObjectStorage
func (s *StubObjectStorage) ObjectExists(ctx context.Context, objectKey string) (bool, error) {
	if objectKey == "" {
		return false, errors.New("object key is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[objectKey], nil
}
