package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider loads secrets from environment variables.
//
// Names are upper-cased with hyphens replaced by underscores and prefixed
// with Prefix: "jamf-password" with prefix "APP_" reads APP_JAMF_PASSWORD.
type EnvProvider struct {
	Prefix string
}

// NewEnvProvider creates an environment secret provider.
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{Prefix: prefix}
}

// GetSecret reads the variable for name. An empty variable counts as missing.
func (p *EnvProvider) GetSecret(_ context.Context, name string) (string, error) {
	envVar := p.Prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	value := os.Getenv(envVar)
	if value == "" {
		return "", fmt.Errorf("%w: environment variable %s", ErrNotFound, envVar)
	}
	return value, nil
}

// Provider returns "env".
func (p *EnvProvider) Provider() string { return "env" }
