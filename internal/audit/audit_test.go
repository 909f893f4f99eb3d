package audit_test

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tomasstrnad1997/minesserver/internal/audit"
)

func tempDBPath(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp("", "*.db")
	require.NoError(t, err)
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })
	return f.Name()
}

func TestOpenCreatesSchema(t *testing.T) {
	path := tempDBPath(t)
	sink, err := audit.Open(path, zap.NewNop())
	require.NoError(t, err)
	defer sink.Close()

	database, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer database.Close()

	var name string
	err = database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'connections'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "connections", name)

	err = database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'moves'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "moves", name)
}

func TestConnectAndDisconnectRecordEvents(t *testing.T) {
	path := tempDBPath(t)
	sink, err := audit.Open(path, zap.NewNop())
	require.NoError(t, err)

	sink.Connect("session-1", "127.0.0.1:1234")
	sink.Disconnect("session-1", "127.0.0.1:1234")
	require.NoError(t, sink.Close())

	database, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer database.Close()

	rows, err := database.Query(`SELECT session_id, remote_addr, event FROM connections ORDER BY rowid`)
	require.NoError(t, err)
	defer rows.Close()

	var events []string
	for rows.Next() {
		var sessionID, remoteAddr, event string
		require.NoError(t, rows.Scan(&sessionID, &remoteAddr, &event))
		assert.Equal(t, "session-1", sessionID)
		assert.Equal(t, "127.0.0.1:1234", remoteAddr)
		events = append(events, event)
	}
	assert.Equal(t, []string{"connect", "disconnect"}, events)
}

func TestMoveRecordsHitMine(t *testing.T) {
	path := tempDBPath(t)
	sink, err := audit.Open(path, zap.NewNop())
	require.NoError(t, err)

	sink.Move("session-1", "dig", 3, 4, true)
	sink.Move("session-1", "flag", 1, 2, false)
	require.NoError(t, sink.Close())

	database, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer database.Close()

	rows, err := database.Query(`SELECT command, x, y, hit_mine FROM moves ORDER BY rowid`)
	require.NoError(t, err)
	defer rows.Close()

	type move struct {
		command string
		x, y    int
		hit     bool
	}
	var moves []move
	for rows.Next() {
		var m move
		require.NoError(t, rows.Scan(&m.command, &m.x, &m.y, &m.hit))
		moves = append(moves, m)
	}
	require.Len(t, moves, 2)
	assert.Equal(t, move{"dig", 3, 4, true}, moves[0])
	assert.Equal(t, move{"flag", 1, 2, false}, moves[1])
}

func TestOpenRejectsUnwritablePath(t *testing.T) {
	_, err := audit.Open("/nonexistent-dir/does-not-exist/audit.db", zap.NewNop())
	assert.Error(t, err)
}

func TestNoopSinkIsSafeToCall(t *testing.T) {
	sink := audit.NewNoop()
	sink.Connect("s", "addr")
	sink.Disconnect("s", "addr")
	sink.Move("s", "dig", 0, 0, false)
	assert.NoError(t, sink.Close())
}
