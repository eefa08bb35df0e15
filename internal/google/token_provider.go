package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// TokenProvider is an interface for providing OAuth tokens for Google APIs.
// This abstraction allows different token sources (file-based, test fakes).
type TokenProvider interface {
	// GetToken retrieves an OAuth token
	GetToken(ctx context.Context) (*oauth2.Token, error)

	// HasToken checks if a token exists
	HasToken() bool
}

// FileTokenProvider provides tokens from the on-disk cache.
type FileTokenProvider struct{}

// NewFileTokenProvider creates a new file-based token provider.
func NewFileTokenProvider() *FileTokenProvider {
	return &FileTokenProvider{}
}

// GetToken retrieves the cached token from disk.
func (p *FileTokenProvider) GetToken(ctx context.Context) (*oauth2.Token, error) {
	ts, err := GetTokenSource(ctx)
	if err != nil {
		return nil, err
	}

	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to get token from file: %w", err)
	}

	return token, nil
}

// HasToken checks if a cached token file exists.
func (p *FileTokenProvider) HasToken() bool {
	return HasToken()
}
