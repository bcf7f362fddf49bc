package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, fmt.Errorf("token file %s holds no token", path)
	}
	return &tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// cachingSource writes each newly issued token back to the cache file.
type cachingSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

func newCachingSource(base oauth2.TokenSource, path string, initial *oauth2.Token) *cachingSource {
	return &cachingSource{base: base, path: path, last: initial.AccessToken}
}

func (s *cachingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tok.AccessToken == s.last {
		return tok, nil
	}
	s.last = tok.AccessToken

	if err := saveToken(s.path, tok); err != nil {
		log.Warn().
			Err(err).
			Str("token_file", s.path).
			Msg("Failed to cache refreshed token")
	} else {
		log.Debug().
			Str("token_file", s.path).
			Time("expiry", tok.Expiry).
			Msg("Cached refreshed token")
	}
	return tok, nil
}
