// Package audit provides a best-effort, write-only log of connection
// lifecycle events and moves, for post-mortem inspection only. Nothing
// written here is ever read back to reconstruct a Board.
package audit

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS connections (
	session_id TEXT NOT NULL,
	remote_addr TEXT NOT NULL,
	event TEXT NOT NULL,
	at_unix INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS moves (
	session_id TEXT NOT NULL,
	command TEXT NOT NULL,
	x INTEGER NOT NULL,
	y INTEGER NOT NULL,
	hit_mine INTEGER NOT NULL,
	at_unix INTEGER NOT NULL
);
`

// Sink records connection and move events. Every recording method
// (Connect, Disconnect, Move) is best effort: a failure is logged by
// the implementation and never propagated to the caller, since the
// audit trail must never affect client-visible behavior. Close
// returns the error from closing the underlying store.
type Sink interface {
	Connect(sessionID, remoteAddr string)
	Disconnect(sessionID, remoteAddr string)
	Move(sessionID, command string, x, y int, hitMine bool)
	Close() error
}

// noop is the Sink used when --audit-db is not set. It costs nothing
// beyond an interface call.
type noop struct{}

func NewNoop() Sink { return noop{} }

func (noop) Connect(string, string)             {}
func (noop) Disconnect(string, string)          {}
func (noop) Move(string, string, int, int, bool) {}
func (noop) Close() error                       { return nil }

// sqliteSink is the DB-backed implementation: schema-on-open plus a
// mutex-guarded *sql.DB, write-only and fire-and-forget rather than
// query-serving.
type sqliteSink struct {
	mu     sync.Mutex
	db     *sql.DB
	logger *zap.Logger
}

// Open creates (or reuses) the sqlite file at path and ensures its
// schema exists. Failure here is fatal to startup when --audit-db was
// explicitly requested.
func Open(path string, logger *zap.Logger) (Sink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open audit db %q", path)
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrapf(err, "ping audit db %q", path)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrapf(err, "initialize audit schema in %q", path)
	}
	return &sqliteSink{db: db, logger: logger}, nil
}

func (s *sqliteSink) Connect(sessionID, remoteAddr string) {
	s.insertConnection(sessionID, remoteAddr, "connect")
}

func (s *sqliteSink) Disconnect(sessionID, remoteAddr string) {
	s.insertConnection(sessionID, remoteAddr, "disconnect")
}

func (s *sqliteSink) insertConnection(sessionID, remoteAddr, event string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO connections (session_id, remote_addr, event, at_unix) VALUES (?, ?, ?, ?)`,
		sessionID, remoteAddr, event, time.Now().Unix(),
	)
	if err != nil {
		s.logger.Warn("audit: failed to record connection event", zap.Error(err), zap.String("event", event))
	}
}

func (s *sqliteSink) Move(sessionID, command string, x, y int, hitMine bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO moves (session_id, command, x, y, hit_mine, at_unix) VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, command, x, y, hitMine, time.Now().Unix(),
	)
	if err != nil {
		s.logger.Warn("audit: failed to record move", zap.Error(err), zap.String("command", command))
	}
}

func (s *sqliteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
