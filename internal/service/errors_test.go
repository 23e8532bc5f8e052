package service_test

import (
	"errors"
	"fmt"
	"testing"

	"todont/internal/service"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"service error", service.Errorf(service.ErrNotFound, "item not found: %d", 3), "item not found: 3"},
		{"wrapped service error", fmt.Errorf("update: %w", &service.Error{Message: "boom"}), "boom"},
		{"plain error", errors.New("plain"), "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := service.Message(tt.err); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", service.Errorf(service.ErrAuth, "token expired"))
	if !errors.Is(err, service.ErrAuth) {
		t.Error("expected errors.Is to match ErrAuth")
	}
	if errors.Is(err, service.ErrNotFound) {
		t.Error("did not expect ErrNotFound to match")
	}
}

func TestOKNormalizesNil(t *testing.T) {
	resp := service.OK(nil)
	if !resp.Success {
		t.Error("expected success")
	}
	if resp.Data.Items == nil || len(resp.Data.Items) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", resp.Data.Items)
	}
}

func TestIndexOf(t *testing.T) {
	items := []service.Item{{ID: 4}, {ID: 7}}
	if got := service.IndexOf(items, 7); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if got := service.IndexOf(items, 9); got != -1 {
		t.Errorf("expected -1, got %d", got)
	}
}
