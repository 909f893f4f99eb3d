// Package server implements the accept loop and per-connection
// handler: one shared Board, one listening socket, and a fresh
// goroutine per accepted client.
package server

import (
	"net"
	"net/http"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tomasstrnad1997/minesserver/internal/audit"
	"github.com/tomasstrnad1997/minesserver/internal/board"
	"github.com/tomasstrnad1997/minesserver/internal/spectate"
)

// Server owns the listening socket, the shared Board, and the
// process-wide player count. It is created once at startup and lives
// for the process lifetime; it is never recreated.
type Server struct {
	Board  *board.Board
	Debug  bool
	logger *zap.Logger
	audit  audit.Sink
	spec   *spectate.Hub

	listener    net.Listener
	playerCount int64 // atomic

	group *errgroup.Group
}

// Options configures optional collaborators. A nil Audit or Spectate
// disables that feature.
type Options struct {
	Logger       *zap.Logger
	Audit        audit.Sink
	Spectate     *spectate.Hub
	SpectateAddr string // empty disables the spectator HTTP listener
}

// New wraps an already-bound listener and board into a Server, ready
// for Serve.
func New(listener net.Listener, b *board.Board, debug bool, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sink := opts.Audit
	if sink == nil {
		sink = audit.NewNoop()
	}
	s := &Server{
		Board:    b,
		Debug:    debug,
		logger:   logger,
		audit:    sink,
		spec:     opts.Spectate,
		listener: listener,
		group:    &errgroup.Group{},
	}
	if opts.SpectateAddr != "" && s.spec != nil {
		s.group.Go(func() error {
			mux := http.NewServeMux()
			mux.HandleFunc("/spectate", s.spec.Handler())
			logger.Info("spectator feed listening", zap.String("addr", opts.SpectateAddr))
			return http.ListenAndServe(opts.SpectateAddr, mux)
		})
	}
	return s
}

// PlayerCount returns the number of currently connected clients.
func (s *Server) PlayerCount() int {
	return int(atomic.LoadInt64(&s.playerCount))
}

// Serve runs the accept loop. It returns the listener's error as soon
// as the listening socket itself fails; individual connection failures
// never terminate it. The optional spectator HTTP listener runs on the
// same errgroup, but its failure does not make Serve return.
func (s *Server) Serve() error {
	acceptErr := make(chan error, 1)
	s.group.Go(func() error {
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				s.logger.Error("accept loop: listener failed", zap.Error(err))
				acceptErr <- err
				return err
			}
			go s.handleConnection(conn)
		}
	})
	return <-acceptErr
}
