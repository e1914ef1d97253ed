package mock

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultPrefix is the path the API is mounted under, matching the
// default base URL of the client.
const DefaultPrefix = "/api"

// Server serves a Backend on a TCP address.
type Server struct {
	backend    *Backend
	prefix     string
	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a server for backend mounted under prefix.
func NewServer(backend *Backend, addr, prefix string) *Server {
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		prefix = ""
	}
	s := &Server{backend: backend, prefix: prefix}

	var handler http.Handler = backend.Handler()
	if prefix != "" {
		mux := http.NewServeMux()
		mux.Handle(prefix+"/", http.StripPrefix(prefix, handler))
		handler = mux
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start binds the address and serves in the background. Errors after the
// listener is bound are delivered on the returned channel.
func (s *Server) Start() (<-chan error, error) {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, err
	}
	s.listener = ln

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh, nil
}

// Stop shuts the server down, waiting up to five seconds for in-flight
// requests.
func (s *Server) Stop() error {
	if s.listener == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// BaseURL is the URL clients should use once the server has started.
func (s *Server) BaseURL() string {
	addr := s.httpServer.Addr
	if s.listener != nil {
		addr = s.listener.Addr().String()
	}
	return "http://" + addr + s.prefix
}
