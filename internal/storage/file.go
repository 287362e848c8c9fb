// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation persistence for riyl-tui.
package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/riyl-tui/internal/util"
)

// =============================================================================
// FILE STORE
// =============================================================================

// FileStore persists blobs as individual JSON files in a directory.
// Default location: ~/.riyl/data/
type FileStore struct {
	// BaseDir is the directory holding one file per key.
	BaseDir string
}

// NewFileStore creates a file-backed blob store rooted at the default
// data directory.
func NewFileStore() (*FileStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, &StoreError{Message: "resolve home directory", Cause: err}
	}
	return NewFileStoreWithDir(filepath.Join(homeDir, ".riyl", "data"))
}

// NewFileStoreWithDir creates a file-backed blob store with a custom
// directory.
func NewFileStoreWithDir(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, &StoreError{Message: "create data directory", Cause: err}
	}
	return &FileStore{BaseDir: baseDir}, nil
}

// Get returns the blob stored under key, or ErrKeyNotFound.
func (s *FileStore) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(s.filePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, &StoreError{Message: "read blob", Cause: err}
	}
	return data, nil
}

// Put stores the blob under key.
// RELIABILITY: Atomic write with fsync prevents data loss on crash.
func (s *FileStore) Put(key string, value []byte) error {
	if err := util.AtomicWriteFile(s.filePath(key), value, 0644); err != nil {
		return &StoreError{Message: "write blob", Cause: err}
	}
	return nil
}

// Delete removes the blob under key. Missing keys are not an error.
func (s *FileStore) Delete(key string) error {
	if err := os.Remove(s.filePath(key)); err != nil && !os.IsNotExist(err) {
		return &StoreError{Message: "delete blob", Cause: err}
	}
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}

// filePath maps a key to its backing file. Path separators in keys are
// flattened so a key can never escape the base directory.
func (s *FileStore) filePath(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_").Replace(key)
	return filepath.Join(s.BaseDir, safe+".json")
}
