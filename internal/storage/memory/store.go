package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/storage"
)

type object struct {
	data        []byte
	contentType string
}

type Store struct {
	mu   sync.RWMutex
	data map[string]object
	puts int
}

func NewInMemory() *Store {
	return &Store{data: make(map[string]object)}
}

func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := storage.Validate(key, data); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy of the data to prevent external modifications
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)
	s.data[key] = object{data: dataCopy, contentType: contentType}
	s.puts++
	return key, nil
}

// Get returns a copy of the object stored under key.
func (s *Store) Get(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.data[key]
	if !ok {
		return nil, "", false
	}
	dataCopy := make([]byte, len(obj.data))
	copy(dataCopy, obj.data)
	return dataCopy, obj.contentType, true
}

func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Puts counts successful writes.
func (s *Store) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}

func (s *Store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]object)
	s.puts = 0
}
