// Package controller holds the UI-facing state of a to-do list and keeps it
// in step with a service.Service.
//
// Mutations are applied to local state first where that is safe (toggling
// completion), then confirmed or reverted once the service call settles.
// Failures never propagate to the caller: they are stored in State.ErrorMsg.
package controller

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"todont/internal/service"
)

// DefaultInitDelay is how long Start waits before the initial fetch.
// Zero still defers the fetch to a timer goroutine.
const DefaultInitDelay time.Duration = 0

// State is a snapshot of the controller.
type State struct {
	Items    []service.Item
	NewItem  string
	ErrorMsg string // empty means no error
}

// HasError reports whether the last operation failed.
func (s State) HasError() bool {
	return s.ErrorMsg != ""
}

// Option configures a ListController.
type Option func(*ListController)

// WithInitDelay sets the delay before the initial GetItems issued by Start.
func WithInitDelay(d time.Duration) Option {
	return func(c *ListController) {
		c.initDelay = d
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *log.Logger) Option {
	return func(c *ListController) {
		c.logger = logger
	}
}

// WithOnChange registers fn to be called with a snapshot after every state
// transition. fn runs on the goroutine that caused the change, outside the
// controller's lock.
func WithOnChange(fn func(State)) Option {
	return func(c *ListController) {
		c.onChange = fn
	}
}

// ListController manages a list of items backed by a service.
// It is safe for concurrent use; overlapping operations resolve in arrival
// order and the last one to settle wins.
type ListController struct {
	svc       service.Service
	logger    *log.Logger
	initDelay time.Duration
	onChange  func(State)

	mu       sync.Mutex
	items    []service.Item
	newItem  string
	errorMsg string
}

// New creates a controller with empty state.
func New(svc service.Service, opts ...Option) *ListController {
	c := &ListController{
		svc:       svc,
		initDelay: DefaultInitDelay,
		items:     []service.Item{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c
}

// Start schedules the initial GetItems after the configured delay.
// The returned channel is closed once that fetch has settled, or when ctx is
// done before it ran.
func (c *ListController) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		t := time.NewTimer(c.initDelay)
		defer t.Stop()
		select {
		case <-t.C:
			c.GetItems(ctx)
		case <-ctx.Done():
		}
	}()
	return done
}

// State returns a copy of the current state.
func (c *ListController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SetNewItem replaces the pending input buffer.
func (c *ListController) SetNewItem(s string) {
	c.mu.Lock()
	c.newItem = s
	c.mu.Unlock()
	c.changed()
}

// GetItems replaces the items with the service's list.
func (c *ListController) GetItems(ctx context.Context) {
	resp, err := c.svc.Get(ctx)

	c.mu.Lock()
	if err = checkResponse(resp, err); err != nil {
		c.failLocked("get", err)
	} else {
		c.items = service.CloneItems(resp.Data.Items)
		c.errorMsg = ""
	}
	c.mu.Unlock()
	c.changed()
}

// AddItem sends the pending input to the service. It does nothing when the
// input is blank. On failure the input is kept so it can be retried.
func (c *ListController) AddItem(ctx context.Context) {
	c.mu.Lock()
	desc := strings.TrimSpace(c.newItem)
	c.mu.Unlock()
	if desc == "" {
		return
	}

	resp, err := c.svc.Add(ctx, desc)

	c.mu.Lock()
	if err = checkResponse(resp, err); err != nil {
		c.failLocked("add", err)
	} else {
		c.items = service.CloneItems(resp.Data.Items)
		c.newItem = ""
		c.errorMsg = ""
	}
	c.mu.Unlock()
	c.changed()
}

// CompleteItem toggles the completion state of item, then asks the service to
// store it. The toggle is reverted if the service call fails.
func (c *ListController) CompleteItem(ctx context.Context, item service.Item) {
	c.mu.Lock()
	orig := item.Complete
	if i := service.IndexOf(c.items, item.ID); i >= 0 {
		orig = c.items[i].Complete
		item = c.items[i]
		c.items[i].Complete = !orig
	}
	item.Complete = !orig
	c.mu.Unlock()
	c.changed()

	resp, err := c.svc.Update(ctx, item)

	c.mu.Lock()
	if err = checkResponse(resp, err); err != nil {
		if i := service.IndexOf(c.items, item.ID); i >= 0 {
			c.items[i].Complete = orig
		}
		c.failLocked("update", err)
	} else {
		if resp.Data.Items != nil {
			c.items = service.CloneItems(resp.Data.Items)
		}
		c.errorMsg = ""
	}
	c.mu.Unlock()
	c.changed()
}

// DeleteItem removes item through the service. Items not present in the list
// are ignored.
func (c *ListController) DeleteItem(ctx context.Context, item service.Item) {
	c.mu.Lock()
	present := service.IndexOf(c.items, item.ID) >= 0
	c.mu.Unlock()
	if !present {
		c.logger.Debug("delete ignored, item not in list", "id", item.ID)
		return
	}

	resp, err := c.svc.Delete(ctx, item)

	c.mu.Lock()
	if err = checkResponse(resp, err); err != nil {
		c.failLocked("delete", err)
	} else {
		c.items = service.CloneItems(resp.Data.Items)
		c.errorMsg = ""
	}
	c.mu.Unlock()
	c.changed()
}

func (c *ListController) failLocked(op string, err error) {
	c.errorMsg = service.Message(err)
	if c.errorMsg == "" {
		c.errorMsg = op + " failed"
	}
	c.logger.Debug("service call failed", "op", op, "err", err)
}

func (c *ListController) snapshotLocked() State {
	return State{
		Items:    service.CloneItems(c.items),
		NewItem:  c.newItem,
		ErrorMsg: c.errorMsg,
	}
}

func (c *ListController) changed() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.State())
}

// checkResponse treats a response without the success flag as a failure.
func checkResponse(resp service.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.Success {
		return &service.Error{Message: "request failed"}
	}
	return nil
}
