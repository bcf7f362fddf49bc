package sheets

import (
	"errors"
	"fmt"
	"net/http"

	"complaint_map/internal/auth"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

var (
	// ErrAuthFailure means no usable credential could be obtained or the
	// spreadsheet rejected it. The operation made no change.
	ErrAuthFailure = errors.New("could not reach the store: authorization failed")

	// ErrTransportFailure means the request to the spreadsheet failed.
	// Appends and overwrites are applied atomically by the API, so a failed
	// write made no change.
	ErrTransportFailure = errors.New("could not reach the store: request failed")
)

// classify wraps err with ErrAuthFailure or ErrTransportFailure.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if isAuthError(err) {
		return fmt.Errorf("failed to %s: %w: %w", op, ErrAuthFailure, err)
	}
	return fmt.Errorf("failed to %s: %w: %w", op, ErrTransportFailure, err)
}

func isAuthError(err error) bool {
	if errors.Is(err, auth.ErrCredentialUnavailable) {
		return true
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden
	}

	return false
}
