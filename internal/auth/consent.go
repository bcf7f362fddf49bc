package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// LoopbackConsent runs the installed-app flow: it listens on an ephemeral
// loopback port, shows the authorization URL and exchanges the code the
// browser is redirected back with.
type LoopbackConsent struct {
	// Present shows the authorization URL to the user. It is logged when nil.
	Present func(authURL string)
}

type callbackResult struct {
	code string
	err  error
}

// Run implements ConsentFunc.
func (l LoopbackConsent) Run(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to open loopback listener: %w", err)
	}

	flow := *cfg
	flow.RedirectURL = "http://" + listener.Addr().String() + "/"
	state := uuid.NewString()

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           callbackHandler(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Loopback callback server failed")
		}
	}()
	defer srv.Close()

	authURL := flow.AuthCodeURL(state, oauth2.AccessTypeOffline)
	if l.Present != nil {
		l.Present(authURL)
	} else {
		log.Info().
			Str("url", authURL).
			Msg("Open this URL in a browser to authorize spreadsheet access")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		tok, err := flow.Exchange(ctx, res.code)
		if err != nil {
			return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
		}
		log.Info().Msg("Authorization granted")
		return tok, nil
	}
}

func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}

		var res callbackResult
		switch {
		case q.Get("error") != "":
			res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
		case q.Get("code") == "":
			res.err = errors.New("authorization response carried no code")
		default:
			res.code = q.Get("code")
		}

		select {
		case results <- res:
		default:
		}

		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authorization complete. You may close this window.")
	})
}
