// Package googletasks implements the service.Service interface using Google Tasks API.
//
// Google task IDs are opaque strings. The client hands out small integer item
// IDs instead, assigned in the order tasks are first seen and stable for the
// lifetime of the client.
package googletasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"todont/internal/config"
	"todont/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// Scope is the OAuth scope for Google Tasks.
	Scope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// TaskList is a Google task list.
type TaskList struct {
	ID        string
	Title     string
	IsDefault bool
}

// Client implements service.Service using Google Tasks API.
type Client struct {
	svc      *tasks.Service
	listName string

	mu     sync.Mutex
	listID string
	ids    map[string]int
	keys   map[int]string
	nextID int
}

// OAuthConfig reads the OAuth client credentials from the config directory.
func OAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.OAuthClientFile, err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.OAuthClientFile, err)
	}
	return oauthConfig, nil
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.HasOAuthClient() || !cfg.HasToken() {
		return nil, service.Errorf(service.ErrAuth, "not logged in (run: todont login)")
	}

	// Unreadable credential files are auth errors.
	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return nil, service.Errorf(service.ErrAuth, "%v", err)
	}

	token, err := LoadToken(cfg)
	if err != nil {
		return nil, service.Errorf(service.ErrAuth, "%v", err)
	}

	// The token source refreshes the access token as needed.
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, token))
	return NewWithHTTPClient(ctx, httpClient, cfg.Google.List)
}

// NewWithHTTPClient creates a client with a custom HTTP client. listName
// selects a task list by title; empty means the default list.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, listName string, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{
		svc:      svc,
		listName: strings.TrimSpace(listName),
		ids:      make(map[string]int),
		keys:     make(map[int]string),
		nextID:   1,
	}, nil
}

// ListLists returns all task lists in API order.
func (c *Client) ListLists(ctx context.Context) ([]TaskList, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	// The default list's real ID is needed to flag it.
	defaultList, err := c.svc.Tasklists.Get(DefaultListID).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}

	var result []TaskList
	err = c.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			result = append(result, TaskList{
				ID:        list.Id,
				Title:     list.Title,
				IsDefault: list.Id == defaultList.Id,
			})
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// ResolveList finds a list by name (case-insensitive, trimmed).
func (c *Client) ResolveList(ctx context.Context, name string) (TaskList, error) {
	name = strings.TrimSpace(name)
	nameLower := strings.ToLower(name)

	lists, err := c.ListLists(ctx)
	if err != nil {
		return TaskList{}, err
	}

	var matches []TaskList
	for _, list := range lists {
		if strings.ToLower(strings.TrimSpace(list.Title)) == nameLower {
			matches = append(matches, list)
		}
	}

	switch len(matches) {
	case 0:
		return TaskList{}, service.Errorf(service.ErrNotFound, "list not found: %s", name)
	case 1:
		return matches[0], nil
	default:
		return TaskList{}, service.Errorf(service.ErrInvalid, "ambiguous list name: %s", name)
	}
}

// list returns the ID of the configured list, resolving it on first use.
func (c *Client) list(ctx context.Context) (string, error) {
	c.mu.Lock()
	id := c.listID
	c.mu.Unlock()
	if id != "" {
		return id, nil
	}
	if c.listName == "" {
		id = DefaultListID
	} else {
		tl, err := c.ResolveList(ctx, c.listName)
		if err != nil {
			return "", err
		}
		id = tl.ID
	}
	c.mu.Lock()
	c.listID = id
	c.mu.Unlock()
	return id, nil
}

// Get implements service.Service.
func (c *Client) Get(ctx context.Context) (service.Response, error) {
	listID, err := c.list(ctx)
	if err != nil {
		return service.Response{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var all []*tasks.Task
	err = c.svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowDeleted(false).
		ShowHidden(true).
		Pages(ctx, func(resp *tasks.Tasks) error {
			all = append(all, resp.Items...)
			return nil
		})
	if err != nil {
		return service.Response{}, wrapError(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]service.Item, 0, len(all))
	seen := make(map[string]bool, len(all))
	for _, t := range all {
		seen[t.Id] = true
		items = append(items, service.Item{
			ID:       c.idLocked(t.Id),
			Desc:     t.Title,
			Complete: t.Status == statusCompleted,
		})
	}
	for key, id := range c.ids {
		if !seen[key] {
			delete(c.ids, key)
			delete(c.keys, id)
		}
	}
	log.FromContext(ctx).Debug("fetched tasks", "list", listID, "count", len(items))
	return service.OK(items), nil
}

// Add implements service.Service.
func (c *Client) Add(ctx context.Context, desc string) (service.Response, error) {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return service.Response{}, service.Errorf(service.ErrInvalid, "description required")
	}
	listID, err := c.list(ctx)
	if err != nil {
		return service.Response{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()
	task, err := c.svc.Tasks.Insert(listID, &tasks.Task{Title: desc}).Context(callCtx).Do()
	if err != nil {
		return service.Response{}, wrapError(err)
	}

	c.mu.Lock()
	c.idLocked(task.Id)
	c.mu.Unlock()
	return c.Get(ctx)
}

// Update implements service.Service.
func (c *Client) Update(ctx context.Context, item service.Item) (service.Response, error) {
	desc := strings.TrimSpace(item.Desc)
	if desc == "" {
		return service.Response{}, service.Errorf(service.ErrInvalid, "description required")
	}
	listID, taskID, err := c.target(ctx, item.ID)
	if err != nil {
		return service.Response{}, err
	}

	patch := &tasks.Task{Title: desc, Status: statusNeedsAction}
	if item.Complete {
		patch.Status = statusCompleted
	} else {
		// Reopening a task requires clearing its completion time.
		patch.NullFields = []string{"Completed"}
	}

	callCtx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()
	if _, err := c.svc.Tasks.Patch(listID, taskID, patch).Context(callCtx).Do(); err != nil {
		return service.Response{}, wrapItemError(err, item.ID)
	}
	return c.Get(ctx)
}

// Delete implements service.Service.
func (c *Client) Delete(ctx context.Context, item service.Item) (service.Response, error) {
	listID, taskID, err := c.target(ctx, item.ID)
	if err != nil {
		return service.Response{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()
	if err := c.svc.Tasks.Delete(listID, taskID).Context(callCtx).Do(); err != nil {
		return service.Response{}, wrapItemError(err, item.ID)
	}
	return c.Get(ctx)
}

// target returns the list and task IDs for an item ID.
func (c *Client) target(ctx context.Context, id int) (string, string, error) {
	listID, err := c.list(ctx)
	if err != nil {
		return "", "", err
	}
	c.mu.Lock()
	taskID, ok := c.keys[id]
	c.mu.Unlock()
	if !ok {
		return "", "", service.Errorf(service.ErrNotFound, "item not found: %d", id)
	}
	return listID, taskID, nil
}

func (c *Client) idLocked(taskID string) int {
	if id, ok := c.ids[taskID]; ok {
		return id
	}
	id := c.nextID
	c.nextID++
	c.ids[taskID] = id
	c.keys[id] = taskID
	return id
}

func wrapItemError(err error, id int) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return service.Errorf(service.ErrNotFound, "item not found: %d", id)
	}
	return wrapError(err)
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return service.Errorf(service.ErrUnavailable, "request timed out")
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return service.Errorf(service.ErrAuth, "token expired or revoked (run: todont login)")
		case http.StatusNotFound:
			return service.Errorf(service.ErrNotFound, "not found")
		}
		if gerr.Code >= http.StatusInternalServerError {
			return service.Errorf(service.ErrUnavailable, "google tasks unavailable (%d)", gerr.Code)
		}
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return service.Errorf(service.ErrAuth, "token expired or revoked (run: todont login)")
	}
	return &service.Error{Message: err.Error(), Err: err}
}
