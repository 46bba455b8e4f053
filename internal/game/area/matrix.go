// Package area implements combat area shapes: boolean cell matrices with an
// origin cell, their geometric transforms, and the per-direction variants an
// area spell selects from when it is cast.
package area

import (
	"errors"
	"fmt"
	"math"
)

// Cell is a tag in a flattened area description.
type Cell uint8

const (
	CellNone           Cell = 0 // not affected
	CellAffected       Cell = 1 // affected
	CellOrigin         Cell = 2 // origin, not affected
	CellAffectedOrigin Cell = 3 // origin and affected
)

var (
	ErrInvalidRows     = errors.New("row count does not divide cell list")
	ErrInvalidCell     = errors.New("unknown cell tag")
	ErrNoOrigin        = errors.New("area has no origin cell")
	ErrMultipleOrigins = errors.New("area has more than one origin cell")
)

// Offset is an affected cell relative to the matrix origin.
// DY grows southwards, DX grows eastwards.
type Offset struct {
	DX int
	DY int
}

// Matrix is a fixed-size grid of affected cells with one origin cell.
// A Matrix is never mutated after construction; every transform returns a
// new instance.
type Matrix struct {
	rows      int
	cols      int
	cells     []bool // row-major
	originRow int
	originCol int
}

func newMatrix(rows, cols int) *Matrix {
	return &Matrix{
		rows:  rows,
		cols:  cols,
		cells: make([]bool, rows*cols),
	}
}

// Parse builds a Matrix from a flattened, row-major cell list.
func Parse(cells []Cell, rows int) (*Matrix, error) {
	if rows <= 0 || len(cells) == 0 || len(cells)%rows != 0 {
		return nil, fmt.Errorf("parsing area (%d cells, %d rows): %w", len(cells), rows, ErrInvalidRows)
	}

	cols := len(cells) / rows
	m := newMatrix(rows, cols)
	origins := 0

	for i, c := range cells {
		y, x := i/cols, i%cols
		switch c {
		case CellNone:
		case CellAffected:
			m.cells[i] = true
		case CellOrigin, CellAffectedOrigin:
			m.cells[i] = c == CellAffectedOrigin
			m.originRow, m.originCol = y, x
			origins++
		default:
			return nil, fmt.Errorf("parsing area cell %d: tag %d: %w", i, c, ErrInvalidCell)
		}
	}

	switch {
	case origins == 0:
		return nil, ErrNoOrigin
	case origins > 1:
		return nil, fmt.Errorf("parsing area: %d origins: %w", origins, ErrMultipleOrigins)
	}

	return m, nil
}

// Rows returns the grid height.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the grid width.
func (m *Matrix) Cols() int { return m.cols }

// Origin returns the origin cell coordinates.
func (m *Matrix) Origin() (row, col int) { return m.originRow, m.originCol }

// Value reports whether the cell at (row, col) is affected.
// Out of range coordinates are never affected.
func (m *Matrix) Value(row, col int) bool {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return false
	}
	return m.cells[row*m.cols+col]
}

// Offsets lists affected cells relative to the origin in row-major order.
// Two matrices with equal offsets describe the same shape regardless of
// their grid size.
func (m *Matrix) Offsets() []Offset {
	var out []Offset
	for y := range m.rows {
		for x := range m.cols {
			if m.cells[y*m.cols+x] {
				out = append(out, Offset{DX: x - m.originCol, DY: y - m.originRow})
			}
		}
	}
	return out
}

// Copy returns a deep copy.
func (m *Matrix) Copy() *Matrix {
	out := newMatrix(m.rows, m.cols)
	copy(out.cells, m.cells)
	out.originRow, out.originCol = m.originRow, m.originCol
	return out
}

// Mirror returns the matrix flipped horizontally.
func (m *Matrix) Mirror() *Matrix {
	out := newMatrix(m.rows, m.cols)
	for y := range m.rows {
		for x := range m.cols {
			out.cells[y*m.cols+(m.cols-1-x)] = m.cells[y*m.cols+x]
		}
	}
	out.originRow, out.originCol = m.originRow, m.cols-1-m.originCol
	return out
}

// Flip returns the matrix flipped vertically.
func (m *Matrix) Flip() *Matrix {
	out := newMatrix(m.rows, m.cols)
	for y := range m.rows {
		for x := range m.cols {
			out.cells[(m.rows-1-y)*m.cols+x] = m.cells[y*m.cols+x]
		}
	}
	out.originRow, out.originCol = m.rows-1-m.originRow, m.originCol
	return out
}

// Rotate90 rotates clockwise by 90 degrees.
func (m *Matrix) Rotate90() *Matrix { return m.rotate(90) }

// Rotate180 rotates by 180 degrees.
func (m *Matrix) Rotate180() *Matrix { return m.rotate(180) }

// Rotate270 rotates clockwise by 270 degrees.
func (m *Matrix) Rotate270() *Matrix { return m.rotate(270) }

// rotate turns every cell around the origin and writes it into a square grid
// of side max(rows, cols)*2 centered on (side/2-1, side/2-1), which is large
// enough to hold any rotated offset.
func (m *Matrix) rotate(angle float64) *Matrix {
	side := max(m.rows, m.cols) * 2
	center := side/2 - 1
	out := newMatrix(side, side)

	rad := angle * math.Pi / 180
	a, b := math.Cos(rad), -math.Sin(rad)
	c, d := math.Sin(rad), math.Cos(rad)

	for y := range m.rows {
		for x := range m.cols {
			if !m.cells[y*m.cols+x] {
				continue
			}
			dx := float64(x - m.originCol)
			dy := float64(y - m.originRow)

			rx := roundHalfUp(dx*a+dy*b) + center
			ry := roundHalfUp(dx*c+dy*d) + center
			out.cells[ry*side+rx] = true
		}
	}

	out.originRow, out.originCol = center, center
	return out
}

// roundHalfUp rounds to the nearest integer, x.5 towards +Inf.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
