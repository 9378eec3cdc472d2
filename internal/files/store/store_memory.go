// Package store keeps uploaded document bytes.
package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"onboard/internal/files/models"
	"onboard/internal/sentinel"
)

// InMemory keeps blobs in a map. Used by tests and the no-disk dev setup.
type InMemory struct {
	mu    sync.RWMutex
	blobs map[string]blob
	now   func() time.Time
}

type blob struct {
	data    []byte
	modTime time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{blobs: make(map[string]blob), now: time.Now}
}

func (m *InMemory) Put(ctx context.Context, key string, r io.Reader, limit int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return 0, fmt.Errorf("read blob: %w", err)
	}
	if int64(len(data)) > limit {
		return 0, fmt.Errorf("write blob %s: %w", key, sentinel.ErrTooLarge)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; ok {
		return 0, fmt.Errorf("blob %s: %w", key, sentinel.ErrAlreadyUsed)
	}
	m.blobs[key] = blob{data: data, modTime: m.now().UTC()}
	return int64(len(data)), nil
}

func (m *InMemory) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[key]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", key, sentinel.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

func (m *InMemory) Stat(_ context.Context, key string) (models.BlobInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[key]
	if !ok {
		return models.BlobInfo{}, fmt.Errorf("blob %s: %w", key, sentinel.ErrNotFound)
	}
	return models.BlobInfo{Size: int64(len(b.data)), ModTime: b.modTime}, nil
}

func (m *InMemory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; !ok {
		return fmt.Errorf("blob %s: %w", key, sentinel.ErrNotFound)
	}
	delete(m.blobs, key)
	return nil
}

// Len returns the number of stored blobs.
func (m *InMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
