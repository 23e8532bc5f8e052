// Package local implements service.Service on top of a store.Store.
package local

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"

	"todont/internal/service"
	"todont/internal/store"
)

// Backend implements service.Service using a store.
type Backend struct {
	store store.Store
}

// New creates a backend over s. The backend owns s and closes it in Close.
func New(s store.Store) *Backend {
	return &Backend{store: s}
}

// Get implements service.Service.
func (b *Backend) Get(ctx context.Context) (service.Response, error) {
	return b.list(ctx)
}

// Add implements service.Service.
func (b *Backend) Add(ctx context.Context, desc string) (service.Response, error) {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return service.Response{}, service.Errorf(service.ErrInvalid, "description required")
	}
	it, err := b.store.Create(ctx, desc)
	if err != nil {
		return service.Response{}, wrapError(err, 0)
	}
	log.FromContext(ctx).Debug("item created", "id", it.ID)
	return b.list(ctx)
}

// Update implements service.Service.
func (b *Backend) Update(ctx context.Context, item service.Item) (service.Response, error) {
	item.Desc = strings.TrimSpace(item.Desc)
	if item.Desc == "" {
		return service.Response{}, service.Errorf(service.ErrInvalid, "description required")
	}
	if err := b.store.Update(ctx, item); err != nil {
		return service.Response{}, wrapError(err, item.ID)
	}
	return b.list(ctx)
}

// Delete implements service.Service.
func (b *Backend) Delete(ctx context.Context, item service.Item) (service.Response, error) {
	if err := b.store.Delete(ctx, item.ID); err != nil {
		return service.Response{}, wrapError(err, item.ID)
	}
	return b.list(ctx)
}

// Close closes the underlying store.
func (b *Backend) Close() error {
	return b.store.Close()
}

func (b *Backend) list(ctx context.Context) (service.Response, error) {
	items, err := b.store.List(ctx)
	if err != nil {
		return service.Response{}, wrapError(err, 0)
	}
	return service.OK(items), nil
}

// wrapError converts store errors into service errors.
func wrapError(err error, id int) error {
	if errors.Is(err, store.ErrNotFound) {
		return service.Errorf(service.ErrNotFound, "item not found: %d", id)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return service.Errorf(service.ErrUnavailable, "request timed out")
	}
	return &service.Error{Message: "storage error: " + err.Error(), Err: err}
}
