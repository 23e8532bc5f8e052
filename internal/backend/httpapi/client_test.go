package httpapi_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"todont/internal/backend/httpapi"
	"todont/internal/backend/local"
	"todont/internal/server"
	"todont/internal/service"
	"todont/internal/store"
)

func newClient(t *testing.T) *httpapi.Client {
	t.Helper()
	srv, err := server.New(local.New(store.NewMemory()), log.New(io.Discard))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c, err := httpapi.New(ts.URL+"/", ts.Client(), time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestClient_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	resp, err := c.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !resp.Success || resp.Data.Items == nil || len(resp.Data.Items) != 0 {
		t.Fatalf("expected empty successful list, got %#v", resp)
	}

	resp, err = c.Add(ctx, "Buy milk")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(resp.Data.Items) != 1 || resp.Data.Items[0].Desc != "Buy milk" {
		t.Fatalf("unexpected items after add: %#v", resp.Data.Items)
	}
	item := resp.Data.Items[0]

	item.Complete = true
	resp, err = c.Update(ctx, item)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !resp.Data.Items[0].Complete {
		t.Error("expected item complete after update")
	}

	resp, err = c.Delete(ctx, item)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(resp.Data.Items) != 0 {
		t.Errorf("expected empty list after delete, got %#v", resp.Data.Items)
	}
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	_, err := c.Update(ctx, service.Item{ID: 42, Desc: "ghost"})
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if got := service.Message(err); got != "item not found: 42" {
		t.Errorf("expected server message, got %q", got)
	}

	_, err = c.Add(ctx, "  ")
	if !errors.Is(err, service.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		kind   error
		msg    string
	}{
		{http.StatusUnauthorized, `{"error":"token expired"}`, service.ErrAuth, "token expired"},
		{http.StatusBadGateway, `{"error":"upstream down"}`, service.ErrUnavailable, "upstream down"},
		{http.StatusInternalServerError, `not json`, nil, "Internal Server Error"},
		{http.StatusOK, `{"success":false}`, nil, "OK"},
	}
	for _, tt := range tests {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = io.WriteString(w, tt.body)
		}))
		c, err := httpapi.New(ts.URL, ts.Client(), time.Second)
		if err != nil {
			t.Fatalf("new client: %v", err)
		}

		_, err = c.Get(context.Background())
		ts.Close()
		if err == nil {
			t.Errorf("status %d: expected error", tt.status)
			continue
		}
		if tt.kind != nil && !errors.Is(err, tt.kind) {
			t.Errorf("status %d: expected %v, got %v", tt.status, tt.kind, err)
		}
		if got := service.Message(err); got != tt.msg {
			t.Errorf("status %d: expected message %q, got %q", tt.status, tt.msg, got)
		}
	}
}

func TestClient_Timeout(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(block)

	c, err := httpapi.New(ts.URL, ts.Client(), 20*time.Millisecond)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = c.Get(context.Background())
	if !errors.Is(err, service.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if got := service.Message(err); got != "request timed out" {
		t.Errorf("expected timeout message, got %q", got)
	}
}

func TestNew_RejectsBadURL(t *testing.T) {
	for _, raw := range []string{"localhost:8000", "ftp://example.com", "://bad"} {
		if _, err := httpapi.New(raw, nil, 0); err == nil {
			t.Errorf("%q: expected error", raw)
		}
	}
}
