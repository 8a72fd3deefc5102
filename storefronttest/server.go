package storefronttest

import (
	"net/http/httptest"
	"testing"
)

// Server is a Service listening on a local httptest server.
type Server struct {
	*Service
	URL string

	srv *httptest.Server
}

// NewServer starts a Service and stops it when the test finishes.
func NewServer(t testing.TB, opts ...Option) *Server {
	t.Helper()
	svc := NewService(opts...)
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)
	return &Server{Service: svc, URL: srv.URL, srv: srv}
}

func (s *Server) MealsURL() string  { return s.URL + "/meals" }
func (s *Server) OrdersURL() string { return s.URL + "/orders" }

// Close stops the listener early, so later requests fail at the transport.
func (s *Server) Close() { s.srv.Close() }
