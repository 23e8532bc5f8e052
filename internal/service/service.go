// Package service defines the backend-agnostic interface for to-do operations.
package service

import "context"

// Service defines the interface for to-do backend operations.
// The list controller, the HTTP server and the CLI only talk to a backend
// through this interface.
//
// Every successful call returns the full, server-confirmed item list in
// Response.Data.Items. Failures are returned as *Error.
type Service interface {
	// Get returns the current item list.
	Get(ctx context.Context) (Response, error)

	// Add creates a new item with the given description.
	Add(ctx context.Context, desc string) (Response, error)

	// Update stores the description and completion state of item.
	// The item is identified by its ID.
	Update(ctx context.Context, item Item) (Response, error)

	// Delete removes item, identified by its ID.
	Delete(ctx context.Context, item Item) (Response, error)
}
