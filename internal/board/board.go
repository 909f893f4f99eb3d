// Package board implements the shared Minesweeper grid: its cell
// states, the flood-fill dig, and the rendering to text rows.
package board

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
)

// State is the player-visible state of a cell. The three values are
// mutually exclusive.
type State byte

const (
	Untouched State = iota
	Dug
	Flagged
)

// Cell holds one grid position's hidden and visible attributes.
type Cell struct {
	Mine  bool
	State State
}

// InvalidParamsError reports a Board that could not be constructed.
type InvalidParamsError struct {
	Width, Height int
}

func (e *InvalidParamsError) Error() string {
	switch {
	case e.Width <= 0:
		return fmt.Sprintf("cannot create a board with width: %d", e.Width)
	case e.Height <= 0:
		return fmt.Sprintf("cannot create a board with height: %d", e.Height)
	default:
		return "cannot construct board: unknown error"
	}
}

// Board is a rectangular grid shared by every connected client. All
// public operations are mutually exclusive under a single monitor,
// matching the low-contention, human-driven traffic this server sees.
type Board struct {
	mu     sync.Mutex
	width  int
	height int
	cells  [][]Cell // cells[y][x], row-major
}

// New constructs a Board from a caller-supplied mine layout. mines
// must have exactly height rows of exactly width booleans each; every
// cell starts Untouched. Used by the loader for both file-mode and
// random-mode boards, keeping the probability/parsing concerns out of
// Board itself.
func New(width, height int, mines [][]bool) (*Board, error) {
	if width <= 0 || height <= 0 {
		return nil, &InvalidParamsError{Width: width, Height: height}
	}
	if len(mines) != height {
		return nil, fmt.Errorf("mine layout has %d rows, want %d", len(mines), height)
	}
	cells := make([][]Cell, height)
	for y := 0; y < height; y++ {
		if len(mines[y]) != width {
			return nil, fmt.Errorf("mine layout row %d has %d columns, want %d", y, len(mines[y]), width)
		}
		cells[y] = make([]Cell, width)
		for x := 0; x < width; x++ {
			cells[y][x] = Cell{Mine: mines[y][x], State: Untouched}
		}
	}
	b := &Board{width: width, height: height, cells: cells}
	b.checkInvariants()
	return b, nil
}

// NewRandom constructs a width x height Board where every cell
// independently carries a mine with probability p.
func NewRandom(width, height int, p float64, rng *rand.Rand) (*Board, error) {
	if width <= 0 || height <= 0 {
		return nil, &InvalidParamsError{Width: width, Height: height}
	}
	mines := make([][]bool, height)
	for y := 0; y < height; y++ {
		mines[y] = make([]bool, width)
		for x := 0; x < width; x++ {
			mines[y][x] = rng.Float64() < p
		}
	}
	return New(width, height, mines)
}

// Width returns the number of columns.
func (b *Board) Width() int {
	return b.width
}

// Height returns the number of rows.
func (b *Board) Height() int {
	return b.height
}

func (b *Board) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// neighbors returns the up-to-eight in-bounds coordinates around (x, y).
func (b *Board) neighbors(x, y int) [][2]int {
	var ns [][2]int
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if b.inBounds(nx, ny) {
				ns = append(ns, [2]int{nx, ny})
			}
		}
	}
	return ns
}

// adjacentMines counts mines among the neighbors of (x, y). Caller
// must hold b.mu.
func (b *Board) adjacentMines(x, y int) int {
	count := 0
	for _, n := range b.neighbors(x, y) {
		if b.cells[n[1]][n[0]].Mine {
			count++
		}
	}
	return count
}

// Dig reveals the cell at (x, y). It reports whether a mine was hit.
// Out-of-bounds or non-Untouched coordinates are silent no-ops
// reporting false. Detonating a mine clears it before any flood-fill
// decision is made, so subsequent renders and neighbor counts already
// reflect the post-detonation grid.
func (b *Board) Dig(x, y int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer b.checkInvariants()

	return b.dig(x, y)
}

// DigAndRender digs (x, y) and renders the resulting board within a
// single critical section, so the returned rows are guaranteed to be
// exactly this call's own result and not a later command's. Handlers
// must use this instead of a separate Dig followed by Render whenever
// the reply needs to reflect this command specifically.
func (b *Board) DigAndRender(x, y int) (hit bool, rows []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer b.checkInvariants()

	hit = b.dig(x, y)
	return hit, b.render()
}

// dig is Dig's body with no locking or invariant check. Caller must
// hold b.mu.
func (b *Board) dig(x, y int) bool {
	if !b.inBounds(x, y) || b.cells[y][x].State != Untouched {
		return false
	}

	cell := &b.cells[y][x]
	cell.State = Dug
	hit := cell.Mine
	if hit {
		cell.Mine = false
	}

	if b.adjacentMines(x, y) == 0 {
		b.propagate(x, y)
	}
	return hit
}

// propagate performs an explicit-queue flood fill from a Dug,
// zero-adjacent-count cell, revealing connected zero-count regions and
// their untouched ring. Caller must hold b.mu. A work queue (rather
// than recursion) bounds memory to the reachable region with no
// recursion-depth risk on large empty boards.
func (b *Board) propagate(startX, startY int) {
	queue := [][2]int{{startX, startY}}
	for len(queue) > 0 {
		cur := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x, y := cur[0], cur[1]

		if b.adjacentMines(x, y) != 0 {
			continue
		}
		for _, n := range b.neighbors(x, y) {
			nx, ny := n[0], n[1]
			if b.cells[ny][nx].State != Untouched {
				continue
			}
			b.cells[ny][nx].State = Dug
			queue = append(queue, [2]int{nx, ny})
		}
	}
}

// Flag marks an Untouched cell as Flagged. Any other input is a no-op.
func (b *Board) Flag(x, y int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer b.checkInvariants()

	b.flag(x, y)
}

// FlagAndRender flags (x, y) and renders the resulting board within a
// single critical section; see DigAndRender for why this matters.
func (b *Board) FlagAndRender(x, y int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer b.checkInvariants()

	b.flag(x, y)
	return b.render()
}

func (b *Board) flag(x, y int) {
	if !b.inBounds(x, y) || b.cells[y][x].State != Untouched {
		return
	}
	b.cells[y][x].State = Flagged
}

// Deflag returns a Flagged cell to Untouched. Any other input is a no-op.
func (b *Board) Deflag(x, y int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer b.checkInvariants()

	b.deflag(x, y)
}

// DeflagAndRender deflags (x, y) and renders the resulting board
// within a single critical section; see DigAndRender for why this
// matters.
func (b *Board) DeflagAndRender(x, y int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer b.checkInvariants()

	b.deflag(x, y)
	return b.render()
}

func (b *Board) deflag(x, y int) {
	if !b.inBounds(x, y) || b.cells[y][x].State != Flagged {
		return
	}
	b.cells[y][x].State = Untouched
}

// Render returns one string per row, top to bottom, encoding this
// board's current visible state. Each row is exactly 2*Width-1
// characters: cells separated by single spaces, no trailing space.
func (b *Board) Render() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.render()
}

// render is Render's body with no locking. Caller must hold b.mu.
func (b *Board) render() []string {
	rows := make([]string, b.height)
	for y := 0; y < b.height; y++ {
		var sb strings.Builder
		for x := 0; x < b.width; x++ {
			if x > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(b.renderCell(x, y))
		}
		rows[y] = sb.String()
	}
	return rows
}

// renderCell encodes a single cell's visible glyph. Caller must hold b.mu.
func (b *Board) renderCell(x, y int) string {
	cell := b.cells[y][x]
	switch cell.State {
	case Untouched:
		return "-"
	case Flagged:
		return "F"
	case Dug:
		count := b.adjacentMines(x, y)
		if count == 0 {
			return " "
		}
		return fmt.Sprintf("%d", count)
	default:
		panic(fmt.Sprintf("board: cell (%d,%d) has invalid state %d", x, y, cell.State))
	}
}

// checkInvariants panics if the board's shape or state invariants do
// not hold. A violation indicates a programming error and is
// unrecoverable, so it is fatal rather than a returned error. Caller
// must hold b.mu.
func (b *Board) checkInvariants() {
	if b.width <= 0 || b.height <= 0 {
		panic(fmt.Sprintf("board: invalid dimensions %dx%d", b.width, b.height))
	}
	if len(b.cells) != b.height {
		panic(fmt.Sprintf("board: %d rows, want %d", len(b.cells), b.height))
	}
	for y, row := range b.cells {
		if len(row) != b.width {
			panic(fmt.Sprintf("board: row %d has %d columns, want %d", y, len(row), b.width))
		}
		for x, cell := range row {
			if cell.State == Dug && cell.Mine {
				panic(fmt.Sprintf("board: cell (%d,%d) is dug but still mined", x, y))
			}
		}
	}
}
