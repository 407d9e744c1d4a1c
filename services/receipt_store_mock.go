package services

import (
	"context"
	"fmt"
	"sync"
)

// MockReceiptStore is an in-memory ReceiptStore for tests
type MockReceiptStore struct {
	files map[string][]byte
	mu    sync.RWMutex

	// PutErr and DeleteErr, when set, are returned by the matching call
	PutErr    error
	DeleteErr error
}

// NewMockReceiptStore creates an empty mock store
func NewMockReceiptStore() *MockReceiptStore {
	return &MockReceiptStore{files: make(map[string][]byte)}
}

// Put records the data under a generated key
func (m *MockReceiptStore) Put(_ context.Context, data []byte, pathHint string) (string, error) {
	if m.PutErr != nil {
		return "", m.PutErr
	}
	key := newReceiptKey(pathHint)

	m.mu.Lock()
	m.files[key] = append([]byte(nil), data...)
	m.mu.Unlock()

	return key, nil
}

// Get returns stored bytes
func (m *MockReceiptStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[key]
	if !ok {
		return nil, ErrReceiptNotFound
	}
	return data, nil
}

// Delete removes a stored key
func (m *MockReceiptStore) Delete(_ context.Context, key string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	m.mu.Lock()
	delete(m.files, key)
	m.mu.Unlock()

	return nil
}

// URL returns a fake presigned link
func (m *MockReceiptStore) URL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

// Files returns a copy of everything stored
func (m *MockReceiptStore) Files() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make(map[string][]byte, len(m.files))
	for k, v := range m.files {
		files[k] = v
	}
	return files
}

// Exists checks if a key is stored
func (m *MockReceiptStore) Exists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[key]
	return ok
}

// Count returns the number of stored receipts
func (m *MockReceiptStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
