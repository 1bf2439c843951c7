package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileProvider loads secrets from files. Relative names resolve against
// BasePath. Files readable by group or others are rejected.
type FileProvider struct {
	BasePath string
}

// NewFileProvider creates a file secret provider.
func NewFileProvider(basePath string) *FileProvider {
	return &FileProvider{BasePath: basePath}
}

// GetSecret reads the file for name with trailing newlines removed.
func (p *FileProvider) GetSecret(_ context.Context, name string) (string, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.BasePath, name)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: file %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("failed to stat secret file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("secret path %s is a directory", path)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return "", fmt.Errorf("insecure permissions %04o on secret file %s: must be 0600 or 0400", perm, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// Provider returns "file".
func (p *FileProvider) Provider() string { return "file" }
