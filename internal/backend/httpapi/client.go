// Package httpapi implements the service.Service interface against a todont
// server's JSON API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"todont/internal/service"
)

// DefaultTimeout is the timeout for API calls.
const DefaultTimeout = 5 * time.Second

// Client implements service.Service over HTTP.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
}

// New creates a client for the server at baseURL.
// httpClient may be nil to use http.DefaultClient.
func New(baseURL string, httpClient *http.Client, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url: %s", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{base: u, http: httpClient, timeout: timeout}, nil
}

// Get implements service.Service.
func (c *Client) Get(ctx context.Context) (service.Response, error) {
	return c.do(ctx, http.MethodGet, "/api/items", nil)
}

// Add implements service.Service.
func (c *Client) Add(ctx context.Context, desc string) (service.Response, error) {
	return c.do(ctx, http.MethodPost, "/api/items", map[string]string{"desc": desc})
}

// Update implements service.Service.
func (c *Client) Update(ctx context.Context, item service.Item) (service.Response, error) {
	return c.do(ctx, http.MethodPut, itemPath(item.ID), item)
}

// Delete implements service.Service.
func (c *Client) Delete(ctx context.Context, item service.Item) (service.Response, error) {
	return c.do(ctx, http.MethodDelete, itemPath(item.ID), nil)
}

func itemPath(id int) string {
	return "/api/items/" + strconv.Itoa(id)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (service.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return service.Response{}, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, rdr)
	if err != nil {
		return service.Response{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger := log.FromContext(ctx)
	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return service.Response{}, wrapError(err)
	}
	defer res.Body.Close()
	logger.Debug("api call", "method", method, "path", path, "status", res.StatusCode, "duration", time.Since(start))

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return service.Response{}, wrapError(err)
	}

	if res.StatusCode != http.StatusOK {
		return service.Response{}, decodeError(res.StatusCode, data)
	}

	var resp service.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return service.Response{}, service.Errorf(service.ErrUnavailable, "invalid response from server")
	}
	if !resp.Success {
		return service.Response{}, decodeError(res.StatusCode, data)
	}
	if resp.Data.Items == nil {
		resp.Data.Items = []service.Item{}
	}
	return resp, nil
}

// decodeError builds a service error from an error response body.
func decodeError(status int, data []byte) error {
	var body struct {
		Error string `json:"error"`
	}
	msg := http.StatusText(status)
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		msg = body.Error
	}
	return &service.Error{Message: msg, Err: kindFor(status)}
}

func kindFor(status int) error {
	switch status {
	case http.StatusBadRequest:
		return service.ErrInvalid
	case http.StatusNotFound:
		return service.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return service.ErrAuth
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return service.ErrUnavailable
	default:
		return nil
	}
}

// wrapError wraps transport errors with user-friendly messages.
func wrapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return service.Errorf(service.ErrUnavailable, "request timed out")
	}
	if errors.Is(err, context.Canceled) {
		return &service.Error{Message: "cancelled", Err: err}
	}
	return &service.Error{
		Message: "server unreachable: " + err.Error(),
		Err:     service.ErrUnavailable,
	}
}
