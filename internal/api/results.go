package api

import (
	"sync"

	"mal-ai/internal/models"
)

// ResultStore keeps the most recent generation results so the page can
// fetch them again for download. It forgets the oldest entry once full.
type ResultStore struct {
	mu       sync.RWMutex
	capacity int
	order    []string
	results  map[string]*models.GenerationResult
}

func NewResultStore(capacity int) *ResultStore {
	if capacity <= 0 {
		capacity = 1
	}
	return &ResultStore{
		capacity: capacity,
		results:  make(map[string]*models.GenerationResult),
	}
}

func (m *ResultStore) Put(res *models.GenerationResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.results[res.ID]; !ok {
		m.order = append(m.order, res.ID)
	}
	m.results[res.ID] = clone(res)

	for len(m.order) > m.capacity {
		delete(m.results, m.order[0])
		m.order = m.order[1:]
	}
}

func (m *ResultStore) Get(id string) (*models.GenerationResult, bool) {
	m.mu.RLock()
	res, ok := m.results[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return clone(res), true
}

func (m *ResultStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

func clone(res *models.GenerationResult) *models.GenerationResult {
	out := *res
	return &out
}
