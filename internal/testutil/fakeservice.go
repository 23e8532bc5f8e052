// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"strings"
	"sync"

	"todont/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.Mutex
	items  []service.Item
	nextID int

	// Error injection for testing
	GetErr    error
	AddErr    error
	UpdateErr error
	DeleteErr error

	// UpdateGate, when set, is called with each Update's item before the
	// fake locks. It may block to hold the call open.
	UpdateGate func(item service.Item)

	// UpdateResp, when set, replaces the response of a successful Update.
	UpdateResp *service.Response

	// Call counters
	GetCalls    int
	AddCalls    int
	UpdateCalls int
	DeleteCalls int

	// Last arguments seen
	LastAdded   string
	LastUpdated service.Item
	LastDeleted service.Item
}

// NewFakeService creates a new, empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{nextID: 1}
}

// AddItem seeds an item and returns it.
func (f *FakeService) AddItem(desc string, complete bool) service.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	it := service.Item{ID: f.nextID, Desc: desc, Complete: complete}
	f.nextID++
	f.items = append(f.items, it)
	return it
}

// Items returns a copy of the stored items.
func (f *FakeService) Items() []service.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	return service.CloneItems(f.items)
}

// Get implements service.Service.
func (f *FakeService) Get(ctx context.Context) (service.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetCalls++
	if f.GetErr != nil {
		return service.Response{}, f.GetErr
	}
	return service.OK(service.CloneItems(f.items)), nil
}

// Add implements service.Service.
func (f *FakeService) Add(ctx context.Context, desc string) (service.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AddCalls++
	f.LastAdded = desc
	if f.AddErr != nil {
		return service.Response{}, f.AddErr
	}
	if strings.TrimSpace(desc) == "" {
		return service.Response{}, service.Errorf(service.ErrInvalid, "description required")
	}
	f.items = append(f.items, service.Item{ID: f.nextID, Desc: desc})
	f.nextID++
	return service.OK(service.CloneItems(f.items)), nil
}

// Update implements service.Service.
func (f *FakeService) Update(ctx context.Context, item service.Item) (service.Response, error) {
	if f.UpdateGate != nil {
		f.UpdateGate(item)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	f.LastUpdated = item
	if f.UpdateErr != nil {
		return service.Response{}, f.UpdateErr
	}
	i := service.IndexOf(f.items, item.ID)
	if i < 0 {
		return service.Response{}, service.Errorf(service.ErrNotFound, "item not found: %d", item.ID)
	}
	f.items[i] = item
	if f.UpdateResp != nil {
		return *f.UpdateResp, nil
	}
	return service.OK(service.CloneItems(f.items)), nil
}

// Delete implements service.Service.
func (f *FakeService) Delete(ctx context.Context, item service.Item) (service.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeleteCalls++
	f.LastDeleted = item
	if f.DeleteErr != nil {
		return service.Response{}, f.DeleteErr
	}
	i := service.IndexOf(f.items, item.ID)
	if i < 0 {
		return service.Response{}, service.Errorf(service.ErrNotFound, "item not found: %d", item.ID)
	}
	f.items = append(f.items[:i], f.items[i+1:]...)
	return service.OK(service.CloneItems(f.items)), nil
}
