package server

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tomasstrnad1997/minesserver/internal/protocol"
)

const helpText = "" +
	"Commands:\n" +
	"  look                 render the current board\n" +
	"  dig X Y              reveal cell (X, Y)\n" +
	"  flag X Y             mark cell (X, Y) as flagged\n" +
	"  deflag X Y           clear the flag on cell (X, Y)\n" +
	"  help                 show this text\n" +
	"  bye                  disconnect"

// handleConnection is the per-client loop: greet, read a line,
// dispatch it under the Board's own monitor, write a reply, and
// terminate on bye/EOF/BOOM (non-debug).
func (s *Server) handleConnection(conn net.Conn) {
	sessionID := uuid.NewString()
	remoteAddr := conn.RemoteAddr().String()
	logger := s.logger.With(zap.String("session", sessionID), zap.String("remote", remoteAddr))

	n := atomic.AddInt64(&s.playerCount, 1)
	s.audit.Connect(sessionID, remoteAddr)
	logger.Info("player connected", zap.Int64("players", n))

	defer func() {
		atomic.AddInt64(&s.playerCount, -1)
		s.audit.Disconnect(sessionID, remoteAddr)
		conn.Close()
		logger.Info("player disconnected")
	}()

	writer := bufio.NewWriter(conn)
	greet := fmt.Sprintf(
		"Welcome to Minesweeper. Players: %d Board: %d columns by %d rows. Type 'help' for help.",
		n, s.Board.Width(), s.Board.Height(),
	)
	if !writeLine(writer, greet) {
		return
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		cmd := protocol.Parse(scanner.Text())
		reply, closeAfter := s.dispatch(sessionID, cmd, logger)
		if reply != "" && !writeLine(writer, reply) {
			return
		}
		if closeAfter {
			return
		}
	}
}

// dispatch runs one parsed command against the Board and returns the
// reply text (already newline-joined, without a trailing newline) and
// whether the connection should be closed afterward.
func (s *Server) dispatch(sessionID string, cmd protocol.Command, logger *zap.Logger) (reply string, closeAfter bool) {
	switch cmd.Kind {
	case protocol.KindLook:
		return strings.Join(s.Board.Render(), "\n"), false

	case protocol.KindHelp:
		return helpText, false

	case protocol.KindBye:
		return "", true

	case protocol.KindDig:
		hit, rows := s.Board.DigAndRender(cmd.X, cmd.Y)
		s.audit.Move(sessionID, "dig", cmd.X, cmd.Y, hit)
		if s.spec != nil {
			s.spec.Broadcast(rows)
		}
		if hit {
			logger.Info("mine detonated", zap.Int("x", cmd.X), zap.Int("y", cmd.Y))
			return "BOOM!", !s.Debug
		}
		return strings.Join(rows, "\n"), false

	case protocol.KindFlag:
		rows := s.Board.FlagAndRender(cmd.X, cmd.Y)
		s.audit.Move(sessionID, "flag", cmd.X, cmd.Y, false)
		if s.spec != nil {
			s.spec.Broadcast(rows)
		}
		return strings.Join(rows, "\n"), false

	case protocol.KindDeflag:
		rows := s.Board.DeflagAndRender(cmd.X, cmd.Y)
		s.audit.Move(sessionID, "deflag", cmd.X, cmd.Y, false)
		if s.spec != nil {
			s.spec.Broadcast(rows)
		}
		return strings.Join(rows, "\n"), false

	default: // KindInvalid
		return helpText, false
	}
}

// writeLine writes msg followed by a single newline and flushes. It
// reports false (and leaves the connection to its caller to close) on
// any write error: a socket error during write ends that client's
// handler.
func writeLine(w *bufio.Writer, msg string) bool {
	if _, err := w.WriteString(msg); err != nil {
		return false
	}
	if err := w.WriteByte('\n'); err != nil {
		return false
	}
	return w.Flush() == nil
}
