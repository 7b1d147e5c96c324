package services

import (
	"context"
	"errors"
	"sync"

	"github.com/BerylCAtieno/document-metadata-api/internal/backend"
	"github.com/BerylCAtieno/document-metadata-api/internal/models"
)

type memoryDocuments struct {
	mu      sync.Mutex
	docs    []models.DocumentMetadata
	saveErr error
	saves   int
}

func (m *memoryDocuments) Load(ctx context.Context) ([]models.DocumentMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.DocumentMetadata(nil), m.docs...), nil
}

func (m *memoryDocuments) Save(ctx context.Context, docs []models.DocumentMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.docs = append([]models.DocumentMetadata(nil), docs...)
	return nil
}

type memoryChat struct {
	msgs      []models.ChatMessage
	appendErr error
}

func (m *memoryChat) Append(ctx context.Context, msgs ...models.ChatMessage) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	for _, msg := range msgs {
		msg.ID = int64(len(m.msgs) + 1)
		m.msgs = append(m.msgs, msg)
	}
	return nil
}

func (m *memoryChat) List(ctx context.Context) ([]models.ChatMessage, error) {
	return append([]models.ChatMessage{}, m.msgs...), nil
}

func (m *memoryChat) Clear(ctx context.Context) error {
	m.msgs = nil
	return nil
}

type memoryStorage struct {
	objects   map[string][]byte
	failAfter int
	uploads   int
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, failAfter: -1}
}

func (m *memoryStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if m.failAfter >= 0 && m.uploads >= m.failAfter {
		return errors.New("bucket unavailable")
	}
	m.uploads++
	m.objects[key] = data
	return nil
}

func (m *memoryStorage) Download(ctx context.Context, key string) ([]byte, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (m *memoryStorage) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

// fakeBackend records calls. unconfigured mimics a client with no base URL.
type fakeBackend struct {
	unconfigured bool
	err          error
	answer       string
	skipped      map[string]string
	indexed      []models.IndexedFile

	added   []string
	deleted []string
	cleared bool
	queries []string
}

func (f *fakeBackend) Query(ctx context.Context, query string) (string, error) {
	if f.unconfigured {
		return "", backend.ErrNotConfigured
	}
	f.queries = append(f.queries, query)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeBackend) AddFiles(ctx context.Context, files []models.FileInput) (*models.IndexResult, error) {
	if f.unconfigured {
		return nil, backend.ErrNotConfigured
	}
	if f.err != nil {
		return nil, f.err
	}
	result := &models.IndexResult{Uploaded: []string{}, Skipped: map[string]string{}}
	for _, file := range files {
		f.added = append(f.added, file.Name)
		if original, ok := f.skipped[file.Name]; ok {
			result.Skipped[file.Name] = original
			continue
		}
		result.Uploaded = append(result.Uploaded, file.Name)
	}
	return result, nil
}

func (f *fakeBackend) ListFiles(ctx context.Context) ([]models.IndexedFile, error) {
	if f.unconfigured {
		return nil, backend.ErrNotConfigured
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.indexed, nil
}

func (f *fakeBackend) DeleteEntries(ctx context.Context, ids []string) error {
	if f.unconfigured {
		return backend.ErrNotConfigured
	}
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, ids...)
	return nil
}

func (f *fakeBackend) ClearCollection(ctx context.Context) error {
	if f.unconfigured {
		return backend.ErrNotConfigured
	}
	if f.err != nil {
		return f.err
	}
	f.cleared = true
	return nil
}
