// Package nntp implements the read-only NNTP session spec.md §4.G
// describes: MODE READER, LIST, GROUP, XOVER, ARTICLE/HEAD/BODY/STAT
// and QUIT, backed by the file-based group store instead of a SQL
// database. The server/connection architecture -- one goroutine per
// accepted connection, a textproto.Conn for line IO, DotWriter for
// multi-line responses -- is kept from go-pugleaf's nntp-server.go and
// nntp-server-cliconns.go; the command handlers are rewritten against
// internal/store and internal/message. Posting, peering, auth and TLS
// are dropped entirely: this bridge only ever serves read access to
// groups it has populated itself (spec.md's Non-goals).
package nntp

import (
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/go-while/pnntprss/internal/config"
)

// NNTPServer accepts connections and serves the read-only session.
type NNTPServer struct {
	Settings *config.Settings
	Listener net.Listener

	shutdown chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
}

// NewNNTPServer builds a server bound to Settings.NNTPAddr.
func NewNNTPServer(settings *config.Settings) (*NNTPServer, error) {
	if settings == nil {
		return nil, fmt.Errorf("nntp: settings cannot be nil")
	}
	return &NNTPServer{
		Settings: settings,
		shutdown: make(chan struct{}),
	}, nil
}

// Start begins accepting connections; it returns once the listener is
// bound, with serving continuing in a background goroutine.
func (s *NNTPServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("nntp: server is already running")
	}

	listener, err := net.Listen("tcp", s.Settings.NNTPAddr)
	if err != nil {
		return fmt.Errorf("nntp: listen on %s: %w", s.Settings.NNTPAddr, err)
	}
	s.Listener = listener
	log.Printf("nntp: server listening on %s", s.Settings.NNTPAddr)

	s.wg.Add(1)
	go s.serve()

	s.running = true
	return nil
}

func (s *NNTPServer) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.Listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
				log.Printf("nntp: accept error: %v", err)
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *NNTPServer) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	client := NewClientConnection(conn, s)
	if err := client.Handle(); err != nil {
		log.Printf("nntp: connection from %s ended: %v", conn.RemoteAddr(), err)
	}
}

// Stop closes the listener and waits (with a timeout) for in-flight
// connections to finish.
func (s *NNTPServer) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.shutdown)
	if s.Listener != nil {
		s.Listener.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		log.Println("nntp: shutdown timed out, forcing exit")
	}
	return nil
}

// IsRunning reports whether the server is currently accepting
// connections.
func (s *NNTPServer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
