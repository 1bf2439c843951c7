package api

import (
	"context"

	"mercator-hq/jamf/pkg/tree"
)

// API is the tree-level contract with the device-management server.
// Paths are relative to the resource prefix (e.g. "policies/id/12").
type API interface {
	// Get fetches path and returns the decoded document. An empty response
	// body yields a nil node.
	Get(ctx context.Context, path string) (*tree.Node, error)

	// Put sends body to path and returns the decoded response document.
	Put(ctx context.Context, path string, body *tree.Node) (*tree.Node, error)
}
