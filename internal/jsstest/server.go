// Package jsstest provides an in-process stand-in for the classic XML API
// for tests.
package jsstest

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"mercator-hq/jamf/pkg/api"
	"mercator-hq/jamf/pkg/config"
	"mercator-hq/jamf/pkg/convert"
	"mercator-hq/jamf/pkg/tree"
)

const resourcePrefix = "/JSSResource/"

// Request is a request received by the server.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Server serves XML documents by resource path. A PUT replaces the document
// at its path, so later GETs observe the write.
type Server struct {
	server   *httptest.Server
	docs     map[string][]byte
	status   map[string]int
	requests []Request
	mu       sync.Mutex
}

// NewServer starts a server. Close it when done.
func NewServer() *Server {
	s := &Server{
		docs:   make(map[string][]byte),
		status: make(map[string]int),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handler))
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.server.Close()
}

// SetXML serves body at the resource path p (e.g. "policies/id/1").
func (s *Server) SetXML(p, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[p] = []byte(body)
}

// SetDocument serves doc encoded as XML at p.
func (s *Server) SetDocument(p string, doc *tree.Node) error {
	data, err := convert.TreeToXML(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[p] = data
	return nil
}

// SetStatus makes every request to p fail with code.
func (s *Server) SetStatus(p string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[p] = code
}

// Document returns the decoded document stored at p, or nil.
func (s *Server) Document(p string) *tree.Node {
	s.mu.Lock()
	data, ok := s.docs[p]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	doc, err := convert.XMLToTree(data)
	if err != nil {
		return nil
	}
	return doc
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Puts returns the PUT requests received so far.
func (s *Server) Puts() []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == http.MethodPut {
			out = append(out, r)
		}
	}
	return out
}

// Config returns a server configuration pointing at s with fast retries.
func (s *Server) Config() config.ServerConfig {
	return config.ServerConfig{
		URL:          s.URL(),
		ResourcePath: config.DefaultResourcePath,
		Timeout:      5 * time.Second,
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
	}
}

// Client returns an API client for s that logs nowhere.
func (s *Server) Client(t testing.TB) *api.Client {
	t.Helper()
	client, err := api.NewClient(s.Config(), api.ClientOptions{
		HTTPClient: s.server.Client(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("api.NewClient() error = %v", err)
	}
	return client
}

func (s *Server) handler(w http.ResponseWriter, r *http.Request) {
	p := strings.TrimPrefix(r.URL.Path, resourcePrefix)
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, Request{Method: r.Method, Path: p, Header: r.Header.Clone(), Body: body})
	code, failing := s.status[p]
	doc, found := s.docs[p]
	s.mu.Unlock()

	if !strings.HasPrefix(r.URL.Path, resourcePrefix) {
		http.NotFound(w, r)
		return
	}
	if failing {
		http.Error(w, http.StatusText(code), code)
		return
	}

	switch r.Method {
	case http.MethodGet:
		if !found {
			http.Error(w, "The server has not found anything matching the request URI", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		w.Write(doc)

	case http.MethodPut:
		parsed, err := convert.XMLToTree(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.docs[p] = body
		s.mu.Unlock()

		root := parsed.Keys()[0]
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, "<%s><id>%s</id></%s>", root, path.Base(p), root)

	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}
