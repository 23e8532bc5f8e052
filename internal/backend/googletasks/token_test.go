package googletasks_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/oauth2"

	"todont/internal/backend/googletasks"
	"todont/internal/config"
	"todont/internal/service"
)

func TestSaveAndLoadToken(t *testing.T) {
	cfg := &config.Config{Dir: filepath.Join(t.TempDir(), "nested")}
	want := &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}

	if err := googletasks.SaveToken(cfg, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(cfg.TokenPath())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}

	got, err := googletasks.LoadToken(cfg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.AccessToken != "a" || got.RefreshToken != "r" {
		t.Errorf("unexpected token: %+v", got)
	}
}

func TestTokenUsable_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"corrupt", `{`},
		{"no refresh token", `{"access_token":"a","token_type":"Bearer"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Dir: t.TempDir()}
			if tt.token != "" {
				if err := os.WriteFile(cfg.TokenPath(), []byte(tt.token), 0600); err != nil {
					t.Fatal(err)
				}
			}
			if googletasks.TokenUsable(context.Background(), cfg) {
				t.Error("expected token to be unusable")
			}
		})
	}
}

func TestNew_NotLoggedIn(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}
	_, err := googletasks.New(context.Background(), cfg)
	if !errors.Is(err, service.ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if got := service.Message(err); got != "not logged in (run: todont login)" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestNew_BadCredentials(t *testing.T) {
	tests := []struct {
		name          string
		client, token string
	}{
		{"corrupt client", `{`, `{"refresh_token":"r"}`},
		{"corrupt token", `{"installed":{"client_id":"c","client_secret":"s","redirect_uris":["http://localhost"]}}`, `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Dir: t.TempDir()}
			if err := os.WriteFile(cfg.OAuthClientPath(), []byte(tt.client), 0600); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(cfg.TokenPath(), []byte(tt.token), 0600); err != nil {
				t.Fatal(err)
			}

			_, err := googletasks.New(context.Background(), cfg)
			if !errors.Is(err, service.ErrAuth) {
				t.Errorf("expected auth error, got %v", err)
			}
		})
	}
}
