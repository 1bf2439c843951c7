package jamf

import (
	"context"
	"net/http"

	"github.com/google/go-cmp/cmp"

	"mercator-hq/jamf/pkg/api"
	"mercator-hq/jamf/pkg/tree"
)

type putCall struct {
	path string
	body *tree.Node
}

// mockAPI serves canned documents by path and records writes.
type mockAPI struct {
	docs   map[string]*tree.Node
	puts   []putCall
	putErr error
}

func (m *mockAPI) Get(_ context.Context, path string) (*tree.Node, error) {
	doc, ok := m.docs[path]
	if !ok {
		return nil, &api.StatusError{Method: http.MethodGet, Path: path, StatusCode: http.StatusNotFound}
	}
	return doc.Clone(), nil
}

func (m *mockAPI) Put(_ context.Context, path string, body *tree.Node) (*tree.Node, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.puts = append(m.puts, putCall{path: path, body: body.Clone()})
	return body, nil
}

func (m *mockAPI) lastPut() putCall {
	if len(m.puts) == 0 {
		return putCall{}
	}
	return m.puts[len(m.puts)-1]
}

var nodeComparer = cmp.Comparer(func(a, b *tree.Node) bool { return a.Equal(b) })

func pkg(name, action string) *tree.Node {
	return tree.New(tree.F("name", name), tree.F("action", action))
}
