// Package backend selects and constructs service.Service implementations.
package backend

import (
	"context"
	"fmt"
	"io"

	"todont/internal/backend/googletasks"
	"todont/internal/backend/httpapi"
	"todont/internal/backend/local"
	"todont/internal/config"
	"todont/internal/service"
	"todont/internal/store"
)

// Open creates the named backend. The returned service may implement
// io.Closer; callers should close it when done.
func Open(ctx context.Context, cfg *config.Config, name string) (service.Service, error) {
	switch name {
	case config.BackendHTTP:
		return httpapi.New(cfg.ServerURL, nil, cfg.RequestTimeout.Duration)
	case config.BackendLocal:
		s, err := store.Open(ctx, cfg.DatabasePath())
		if err != nil {
			return nil, err
		}
		return local.New(s), nil
	case config.BackendGoogle:
		return googletasks.New(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown backend: %s", name)
	}
}

// Close closes svc if it holds resources.
func Close(svc service.Service) error {
	if c, ok := svc.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
