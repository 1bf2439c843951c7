// Package secrets resolves credential references in configuration values.
//
// A value of the form "env:NAME" is read from the environment and a value of
// the form "file:/path" from a file; anything else is used literally.
//
//	server:
//	  username: api
//	  password: file:/run/secrets/jamf-password
package secrets

import (
	"context"
	"errors"
)

// ErrNotFound is matched by lookups of missing secrets.
var ErrNotFound = errors.New("secret not found")

// Provider retrieves secrets from a backend.
type Provider interface {
	// GetSecret retrieves a secret by name.
	GetSecret(ctx context.Context, name string) (string, error)

	// Provider returns the provider name, which is also its reference prefix.
	Provider() string
}
