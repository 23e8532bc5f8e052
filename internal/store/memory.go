package store

import (
	"context"
	"sync"

	"todont/internal/service"
)

// Memory is a Store kept entirely in process memory.
type Memory struct {
	mu     sync.Mutex
	items  []service.Item
	nextID int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

func (m *Memory) List(ctx context.Context) ([]service.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return service.CloneItems(m.items), nil
}

func (m *Memory) Create(ctx context.Context, desc string) (service.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it := service.Item{ID: m.nextID, Desc: desc}
	m.nextID++
	m.items = append(m.items, it)
	return it, nil
}

func (m *Memory) Update(ctx context.Context, item service.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := service.IndexOf(m.items, item.ID)
	if i < 0 {
		return ErrNotFound
	}
	m.items[i] = item
	return nil
}

func (m *Memory) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := service.IndexOf(m.items, id)
	if i < 0 {
		return ErrNotFound
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	return nil
}

func (m *Memory) Close() error { return nil }
