package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalReceiptStore keeps receipts on the local filesystem under a root directory
type LocalReceiptStore struct {
	root string
}

// NewLocalReceiptStore creates the root directory if needed
func NewLocalReceiptStore(root string) (*LocalReceiptStore, error) {
	if root == "" {
		root = "./uploads"
	}
	if err := os.MkdirAll(filepath.Join(root, ReceiptPrefix), 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalReceiptStore{root: root}, nil
}

func (s *LocalReceiptStore) fullPath(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid receipt path %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

// Put writes the receipt to disk
func (s *LocalReceiptStore) Put(_ context.Context, data []byte, pathHint string) (string, error) {
	key := newReceiptKey(pathHint)
	full, err := s.fullPath(key)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return key, nil
}

// Get reads a receipt from disk
func (s *LocalReceiptStore) Get(_ context.Context, key string) ([]byte, error) {
	full, err := s.fullPath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrReceiptNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Delete removes a receipt from disk
func (s *LocalReceiptStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return nil
	}
	full, err := s.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// URL returns the API route that serves the receipt
func (s *LocalReceiptStore) URL(_ context.Context, key string) (string, error) {
	return ReceiptRoute(key), nil
}
