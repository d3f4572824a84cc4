package catalog

import (
	"context"
	"sync"

	"github.com/sir_venger/media_lite/internal/models"
)

// MemoryStore хранит записи только в оперативной памяти; удобно для тестов.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[string]models.MediaRecord
}

// NewMemoryStore создаёт пустое in-memory хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: map[string]models.MediaRecord{}}
}

// Get возвращает запись по id или ErrMediaNotFound.
func (s *MemoryStore) Get(_ context.Context, id string) (models.MediaRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[id]
	if !ok {
		return models.MediaRecord{}, models.ErrMediaNotFound
	}
	return rec, nil
}

// Save записывает (или обновляет) запись целиком.
func (s *MemoryStore) Save(_ context.Context, rec models.MediaRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.MediaID] = rec
	return nil
}

// Delete удаляет запись или возвращает ErrMediaNotFound.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recs[id]; !ok {
		return models.ErrMediaNotFound
	}
	delete(s.recs, id)
	return nil
}

// Len возвращает число записей.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recs)
}

// Close ничего не делает; нужен для общего интерфейса с PGStore.
func (s *MemoryStore) Close() {}
