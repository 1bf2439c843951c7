// Package security holds credential handling for the jamf client.
//
// See package secrets for resolving env: and file: references in the
// server configuration.
package security
