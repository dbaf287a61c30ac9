package paper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps rendered PDFs in process memory. It backs tests and
// single-process development servers.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string]storedFile
}

type storedFile struct {
	body []byte
	meta ArtifactMeta
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: map[string]storedFile{}}
}

// Put buffers r under key, replacing any previous artifact.
func (s *MemoryStore) Put(ctx context.Context, key string, r io.Reader, meta ArtifactMeta) (ArtifactRef, error) {
	if err := ctx.Err(); err != nil {
		return ArtifactRef{}, err
	}
	if strings.TrimSpace(key) == "" {
		return ArtifactRef{}, NewError(KindValidation, "artifact key is required", nil)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return ArtifactRef{}, NewError(KindInternal, "buffer artifact", err)
	}

	meta.Size = int64(buf.Len())
	if meta.ContentType == "" {
		meta.ContentType = contentTypePDF
	}
	if meta.Filename == "" {
		meta.Filename = path.Base(key)
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = storedFile{body: buf.Bytes(), meta: meta}
	return ArtifactRef{Key: key, Meta: meta}, nil
}

func (s *MemoryStore) Open(ctx context.Context, key string) (io.ReadCloser, ArtifactMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, ArtifactMeta{}, err
	}
	s.mu.RLock()
	file, ok := s.files[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ArtifactMeta{}, NewError(KindNotFound, fmt.Sprintf("artifact %q not found", key), nil)
	}
	return io.NopCloser(bytes.NewReader(file.body)), file.meta, nil
}

// Delete is a no-op for unknown keys.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	return nil
}

// Len reports the number of stored artifacts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// MemoryHistory keeps generation records in memory (test/dev only).
type MemoryHistory struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryHistory creates an in-memory history store.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{records: make(map[string]Record)}
}

// Save inserts or replaces a record.
func (h *MemoryHistory) Save(_ context.Context, record Record) error {
	if record.ID == "" {
		return NewError(KindValidation, "record id is required", nil)
	}
	h.mu.Lock()
	h.records[record.ID] = record
	h.mu.Unlock()
	return nil
}

// Get returns a record by ID.
func (h *MemoryHistory) Get(_ context.Context, id string) (Record, error) {
	h.mu.RLock()
	record, ok := h.records[id]
	h.mu.RUnlock()
	if !ok {
		return Record{}, NewError(KindNotFound, fmt.Sprintf("paper %q not found", id), nil)
	}
	return record, nil
}

// List returns records matching a filter, newest first.
func (h *MemoryHistory) List(_ context.Context, filter HistoryFilter) ([]Record, error) {
	result := []Record{}

	h.mu.RLock()
	for _, record := range h.records {
		if filter.Matches(record) {
			result = append(result, record)
		}
	}
	h.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Delete removes a record.
func (h *MemoryHistory) Delete(_ context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.records[id]; !ok {
		return NewError(KindNotFound, fmt.Sprintf("paper %q not found", id), nil)
	}
	delete(h.records, id)
	return nil
}

// Matches reports whether record passes the filter, ignoring Limit.
func (f HistoryFilter) Matches(record Record) bool {
	if f.Subject != "" && record.Subject != f.Subject {
		return false
	}
	if !f.Since.IsZero() && record.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && record.CreatedAt.After(f.Until) {
		return false
	}
	return true
}
