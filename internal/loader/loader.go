// Package loader builds a Board from either a board file or a random
// mine distribution. Grammar violations are fatal startup errors,
// wrapped with github.com/pkg/errors so the operator sees which line
// and token failed.
package loader

import (
	"bufio"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/tomasstrnad1997/minesserver/internal/board"
)

// RandomMineProbability is the per-cell independent mine probability
// used by FromRandom.
const RandomMineProbability = 0.25

// FromFile parses a board file matching:
//
//	FILE    ::= HEADER LINE+
//	HEADER  ::= INT SP INT NEWLINE        ; W then H
//	LINE    ::= (VAL SP)* VAL NEWLINE     ; exactly W values
//	VAL     ::= "0" | "1"
//
// The file must contain exactly H data lines of exactly W tokens each;
// a wrong token count, a token other than "0" or "1", a non-integer or
// non-positive header value, or a wrong number of data lines returns a
// wrapped, non-nil error. Tokens are split on any run of whitespace and
// header integers are read with strconv.Atoi, so extra spaces, tabs,
// and a leading "+" on a header integer are accepted.
func FromFile(path string) (*board.Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open board file %q", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, errors.Errorf("board file %q: missing header line", path)
	}
	width, height, err := parseHeader(scanner.Text())
	if err != nil {
		return nil, errors.Wrapf(err, "board file %q: line 1", path)
	}

	mines := make([][]bool, 0, height)
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		row, err := parseRow(scanner.Text(), width)
		if err != nil {
			return nil, errors.Wrapf(err, "board file %q: line %d", path, lineNo)
		}
		mines = append(mines, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "board file %q: read failure", path)
	}
	if len(mines) != height {
		return nil, errors.Errorf("board file %q: header declares %d rows, found %d", path, height, len(mines))
	}

	b, err := board.New(width, height, mines)
	if err != nil {
		return nil, errors.Wrapf(err, "board file %q", path)
	}
	return b, nil
}

func parseHeader(line string) (width, height int, err error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, errors.Errorf("header must have exactly 2 integers, got %q", line)
	}
	width, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "width token %q", fields[0])
	}
	height, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "height token %q", fields[1])
	}
	if width <= 0 || height <= 0 {
		return 0, 0, errors.Errorf("width and height must be positive, got %d x %d", width, height)
	}
	return width, height, nil
}

func parseRow(line string, width int) ([]bool, error) {
	fields := strings.Fields(line)
	if len(fields) != width {
		return nil, errors.Errorf("expected %d tokens, got %d", width, len(fields))
	}
	row := make([]bool, width)
	for i, tok := range fields {
		switch tok {
		case "0":
			row[i] = false
		case "1":
			row[i] = true
		default:
			return nil, errors.Errorf("token %d: expected \"0\" or \"1\", got %q", i, tok)
		}
	}
	return row, nil
}

// FromRandom builds a width x height board where each cell
// independently carries a mine with probability RandomMineProbability.
func FromRandom(width, height int, rng *rand.Rand) (*board.Board, error) {
	b, err := board.NewRandom(width, height, RandomMineProbability, rng)
	if err != nil {
		return nil, errors.Wrap(err, "generate random board")
	}
	return b, nil
}
