// Package credentials resolves the analysis credential for an invocation and
// stores per-user saved credentials.
package credentials

import (
	"context"
	"strings"
)

// Resolve returns the explicit credential when present, else the saved one.
// Both values are trimmed; ErrMissingCredential is returned when both are empty.
func Resolve(explicit, saved string) (string, error) {
	if v := strings.TrimSpace(explicit); v != "" {
		return v, nil
	}
	if v := strings.TrimSpace(saved); v != "" {
		return v, nil
	}
	return "", ErrMissingCredential
}

// System stores one saved credential per user.
type System interface {
	// Save creates or replaces the user's credential.
	Save(ctx context.Context, userID, credential string) error

	// Find returns the user's credential or ErrNotFound.
	Find(ctx context.Context, userID string) (string, error)

	// Delete removes the user's credential. Removing a missing credential returns ErrNotFound.
	Delete(ctx context.Context, userID string) error

	// Saved returns the user's credential, falling back to the service default.
	// Lookup failures yield the fallback rather than an error.
	Saved(ctx context.Context, userID string) string
}
