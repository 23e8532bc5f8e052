package googletasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"

	"todont/internal/config"
)

const tokenCheckTimeout = 10 * time.Second

// LoadToken reads the stored OAuth token.
func LoadToken(cfg *config.Config) (*oauth2.Token, error) {
	data, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.TokenFile, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.TokenFile, err)
	}
	return &token, nil
}

// SaveToken writes token to the config directory with mode 0600, creating the
// directory if needed.
func SaveToken(cfg *config.Config, token *oauth2.Token) error {
	if err := cfg.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.TokenPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// TokenUsable reports whether the stored token has a refresh token and can
// produce a valid access token, refreshing it if needed.
func TokenUsable(ctx context.Context, cfg *config.Config) bool {
	if !cfg.HasToken() {
		return false
	}
	token, err := LoadToken(cfg)
	if err != nil || token.RefreshToken == "" {
		return false
	}
	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, tokenCheckTimeout)
	defer cancel()
	_, err = oauthConfig.TokenSource(ctx, token).Token()
	return err == nil
}
