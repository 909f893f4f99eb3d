package protocol_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tomasstrnad1997/minesserver/internal/protocol"
)

func TestParseNullaryCommands(t *testing.T) {
	cases := map[string]protocol.Kind{
		"look": protocol.KindLook,
		"help": protocol.KindHelp,
		"bye":  protocol.KindBye,
	}
	for line, want := range cases {
		got := protocol.Parse(line)
		assert.Equal(t, want, got.Kind, "line %q", line)
	}
}

func TestParseNullaryCommandsRejectExtraTokens(t *testing.T) {
	for _, line := range []string{"look 1", "help now", "bye bye"} {
		got := protocol.Parse(line)
		assert.Equal(t, protocol.KindInvalid, got.Kind, "line %q", line)
	}
}

func TestParseCoordinateCommands(t *testing.T) {
	cases := []struct {
		line string
		kind protocol.Kind
		x, y int
	}{
		{"dig 3 4", protocol.KindDig, 3, 4},
		{"flag 0 0", protocol.KindFlag, 0, 0},
		{"deflag 7 2", protocol.KindDeflag, 7, 2},
		{"dig -1 -2", protocol.KindDig, -1, -2},
	}
	for _, c := range cases {
		got := protocol.Parse(c.line)
		assert.Equal(t, c.kind, got.Kind, "line %q", c.line)
		assert.Equal(t, c.x, got.X, "line %q", c.line)
		assert.Equal(t, c.y, got.Y, "line %q", c.line)
	}
}

func TestParseRejectsWrongArity(t *testing.T) {
	for _, line := range []string{"dig", "dig 1", "dig 1 2 3", "flag", "deflag 1 2 3"} {
		got := protocol.Parse(line)
		assert.Equal(t, protocol.KindInvalid, got.Kind, "line %q", line)
	}
}

func TestParseRejectsNonIntegerCoordinates(t *testing.T) {
	for _, line := range []string{"dig a 1", "dig 1 b", "dig 1.5 2", "dig  1", "dig 1 "} {
		got := protocol.Parse(line)
		assert.Equal(t, protocol.KindInvalid, got.Kind, "line %q", line)
	}
}

func TestParseRejectsLeadingPlus(t *testing.T) {
	got := protocol.Parse("dig +1 2")
	assert.Equal(t, protocol.KindInvalid, got.Kind)
}

func TestParseUnknownVerbIsInvalid(t *testing.T) {
	got := protocol.Parse("explode 1 2")
	assert.Equal(t, protocol.KindInvalid, got.Kind)
}

func TestParseEmptyLineIsInvalid(t *testing.T) {
	got := protocol.Parse("")
	assert.Equal(t, protocol.KindInvalid, got.Kind)
}
