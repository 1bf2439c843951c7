// Package cli provides shared helpers for the jamf command: output
// formatters, exit codes and signal handling.
package cli
