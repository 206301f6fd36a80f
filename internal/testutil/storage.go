package testutil

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/lifelog/lifelog/internal/apperr"
	"github.com/lifelog/lifelog/internal/storage"
)

// MemStorage implements storage.Storage in memory. FailPutAt makes the n-th
// Put call fail (1-based); FailDelete makes every Delete fail. Both model the
// transient backend failures the coordinator must compensate for.
type MemStorage struct {
	mu         sync.Mutex
	objects    map[string][]byte
	PutCalls   int
	FailPutAt  int
	FailDelete bool
}

var _ storage.Storage = (*MemStorage)(nil)

func NewMemStorage() *MemStorage {
	return &MemStorage{objects: map[string][]byte{}}
}

func (s *MemStorage) Put(ctx context.Context, filename string, body io.Reader, contentType string, size int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.PutCalls++
	if s.FailPutAt != 0 && s.PutCalls >= s.FailPutAt {
		return "", apperr.Wrap(apperr.CodeStorage, "failed to upload object", errors.New("backend unavailable"))
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	key := storage.NewKey(filename)
	s.objects[key] = data
	return key, nil
}

func (s *MemStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func (s *MemStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailDelete {
		return apperr.Wrap(apperr.CodeStorage, "failed to delete object", errors.New("backend unavailable"))
	}

	delete(s.objects, key)
	return nil
}

// Len reports the number of stored objects.
func (s *MemStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Has reports whether key currently holds an object.
func (s *MemStorage) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}
