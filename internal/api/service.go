package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

// ReachabilitySource is the part of the reachability observable the API needs.
type ReachabilitySource interface {
	Subscribe() (<-chan bool, func())
	Latest() (reachable bool, ok bool)
}

// Service represents the HTTP server for the API
type Service struct {
	address string
	port    int

	source  ReachabilitySource
	metrics http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
	ctx      context.Context
	cancel   context.CancelFunc
	closed   bool
}

func NewService(host string, port int) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		address: host,
		port:    port,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (s *Service) AttachReachability(src ReachabilitySource) {
	s.source = src
}

// AttachMetrics mounts h at /metrics.
func (s *Service) AttachMetrics(h http.Handler) {
	s.metrics = h
}

// Start listens on the configured address and serves until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	if s.source == nil {
		return errors.New("AttachReachability was not called before Start")
	}

	addr := net.JoinHostPort(s.address, fmt.Sprint(s.port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.ctx },
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return nil
	}
	s.listener = ln
	s.server = srv
	s.mu.Unlock()

	log.Infof("Starting reachd API service at %s", ln.Addr())
	defer log.Info("Stopping reachd API service")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		return s.shutdown()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Addr returns the listening address once Start is serving.
func (s *Service) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	return s.shutdown()
}

func (s *Service) shutdown() error {
	// Hijacked WebSocket connections are not tracked by the server.
	s.cancel()

	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("API server did not shut down cleanly")
		return err
	}
	return nil
}

// Handler returns the API routes.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if _, ok := s.source.Latest(); !ok {
				http.Error(w, "reachability not yet known", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/reachability", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		reachable, known := s.source.Latest()
		w.Header().Add("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		if err := enc.Encode(ReachabilityStatus{Reachable: reachable, Known: known}); err != nil {
			http.Error(w, fmt.Sprintf("Failed to encode reachability: %v", err), http.StatusInternalServerError)
		}
	})
	mux.HandleFunc("/ws/reachability", func(w http.ResponseWriter, r *http.Request) {
		StreamReachability(s, w, r)
	})
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	return mux
}
