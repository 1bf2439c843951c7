package secrets

import (
	"context"
	"fmt"
	"strings"
)

// Resolver expands "<provider>:<name>" references using its providers.
type Resolver struct {
	providers map[string]Provider
}

// NewResolver creates a resolver over providers, keyed by Provider().
func NewResolver(providers ...Provider) *Resolver {
	r := &Resolver{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Provider()] = p
	}
	return r
}

// Default returns a resolver for unprefixed environment variables and
// files relative to the working directory.
func Default() *Resolver {
	return NewResolver(NewEnvProvider(""), NewFileProvider(""))
}

// Resolve returns the secret value references, or value itself when it does
// not start with a known provider prefix.
func (r *Resolver) Resolve(ctx context.Context, value string) (string, error) {
	prefix, name, ok := strings.Cut(value, ":")
	if !ok {
		return value, nil
	}
	p, known := r.providers[prefix]
	if !known {
		return value, nil
	}
	if name == "" {
		return "", fmt.Errorf("empty %s secret reference", prefix)
	}
	return p.GetSecret(ctx, name)
}
