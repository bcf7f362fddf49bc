// Package auth obtains OAuth2 credentials for the Google Sheets API.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// SpreadsheetsScope grants read/write access to spreadsheets.
const SpreadsheetsScope = "https://www.googleapis.com/auth/spreadsheets"

// ErrCredentialUnavailable wraps every failure to produce a token.
var ErrCredentialUnavailable = errors.New("credential unavailable")

// ConsentFunc runs an interactive authorization for cfg and returns the granted token.
type ConsentFunc func(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error)

// Provider hands out access tokens for the spreadsheet.
//
// The credentials file is either an OAuth client ("installed" or "web") or a
// service account key. Installed-app tokens are cached in the token file and
// refreshed when they expire. When no usable cached token exists the consent
// flow runs, at most once per process.
//
// Provider is safe for concurrent use.
type Provider struct {
	credentialsFile string
	tokenFile       string
	consent         ConsentFunc

	mu        sync.Mutex
	source    oauth2.TokenSource
	consented bool
}

// NewProvider creates a provider reading credentialsFile and caching user tokens in tokenFile.
func NewProvider(credentialsFile, tokenFile string) *Provider {
	return &Provider{
		credentialsFile: credentialsFile,
		tokenFile:       tokenFile,
		consent:         LoopbackConsent{}.Run,
	}
}

// GetCredential returns a valid access token, refreshing or obtaining one as needed.
func (p *Provider) GetCredential(ctx context.Context) (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.source == nil {
		source, err := p.buildSource(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCredentialUnavailable, err)
		}
		p.source = source
	}

	tok, err := p.source.Token()
	if err != nil {
		// rebuild on the next call so an edited token file is picked up
		p.source = nil
		return nil, fmt.Errorf("%w: failed to get token: %w", ErrCredentialUnavailable, err)
	}
	return tok, nil
}

// Token implements oauth2.TokenSource.
func (p *Provider) Token() (*oauth2.Token, error) {
	return p.GetCredential(context.Background())
}

func (p *Provider) buildSource(ctx context.Context) (oauth2.TokenSource, error) {
	data, err := os.ReadFile(p.credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	// token sources outlive the call that built them
	bg := context.WithoutCancel(ctx)

	if header.Type == "service_account" {
		cfg, err := google.JWTConfigFromJSON(data, SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse service account key: %w", err)
		}
		log.Debug().
			Str("client_email", cfg.Email).
			Msg("Using service account credentials")
		return cfg.TokenSource(bg), nil
	}

	cfg, err := google.ConfigFromJSON(data, SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secrets: %w", err)
	}

	tok, err := loadToken(p.tokenFile)
	switch {
	case err == nil && (tok.Valid() || tok.RefreshToken != ""):
		log.Debug().
			Str("token_file", p.tokenFile).
			Bool("expired", !tok.Valid()).
			Msg("Loaded cached token")
		return newCachingSource(cfg.TokenSource(bg, tok), p.tokenFile, tok), nil
	case err != nil && !errors.Is(err, os.ErrNotExist):
		log.Warn().
			Err(err).
			Str("token_file", p.tokenFile).
			Msg("Ignoring unreadable token cache")
	}

	if p.consented {
		return nil, errors.New("authorization was already attempted in this process")
	}
	p.consented = true

	tok, err = p.consent(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	if err := saveToken(p.tokenFile, tok); err != nil {
		log.Warn().
			Err(err).
			Str("token_file", p.tokenFile).
			Msg("Failed to cache token")
	} else {
		log.Info().
			Str("token_file", p.tokenFile).
			Msg("Saved new token")
	}

	return newCachingSource(cfg.TokenSource(bg, tok), p.tokenFile, tok), nil
}
