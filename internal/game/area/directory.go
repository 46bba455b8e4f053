package area

import (
	"fmt"

	"github.com/udisondev/tilecombat/internal/model"
)

// PathChecker reports whether an effect can travel between two positions.
type PathChecker interface {
	CanThrowObjectTo(from, to model.Position) bool
}

// Directory holds one matrix variant per facing, derived once from a base
// shape. Cardinal variants are always set together, diagonal variants are
// either all present or all absent.
type Directory struct {
	variants    [model.DirectionCount]*Matrix
	hasCardinal bool
	hasDiagonal bool
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{}
}

// SetupPrimary parses the north-facing shape and derives the other three
// cardinal variants from it. On error the directory is left unchanged.
func (d *Directory) SetupPrimary(cells []Cell, rows int) error {
	north, err := Parse(cells, rows)
	if err != nil {
		return fmt.Errorf("primary area: %w", err)
	}

	d.variants[model.North] = north
	d.variants[model.South] = north.Rotate180()
	d.variants[model.East] = north.Rotate90()
	d.variants[model.West] = north.Rotate270()
	d.hasCardinal = true
	return nil
}

// SetupSecondary parses the northwest-facing shape and derives the other
// diagonal variants. An empty list leaves the directory without diagonals.
func (d *Directory) SetupSecondary(cells []Cell, rows int) error {
	if len(cells) == 0 {
		return nil
	}

	northWest, err := Parse(cells, rows)
	if err != nil {
		return fmt.Errorf("secondary area: %w", err)
	}

	southWest := northWest.Flip()
	d.variants[model.NorthWest] = northWest
	d.variants[model.NorthEast] = northWest.Mirror()
	d.variants[model.SouthWest] = southWest
	d.variants[model.SouthEast] = southWest.Mirror()
	d.hasDiagonal = true
	return nil
}

// Configured reports whether the cardinal variants exist.
func (d *Directory) Configured() bool { return d.hasCardinal }

// HasDiagonal reports whether the diagonal variants exist.
func (d *Directory) HasDiagonal() bool { return d.hasDiagonal }

// Lookup returns the variant for dir.
func (d *Directory) Lookup(dir model.Direction) (*Matrix, bool) {
	if !dir.Valid() {
		return nil, false
	}
	m := d.variants[dir]
	return m, m != nil
}

// Facing picks the variant direction for a cast from center towards target.
func (d *Directory) Facing(center, target model.Position) model.Direction {
	dx, dy := center.Delta(target)

	if d.hasDiagonal && dx != 0 && dy != 0 {
		switch {
		case dx < 0 && dy < 0:
			return model.NorthWest
		case dx > 0 && dy < 0:
			return model.NorthEast
		case dx < 0:
			return model.SouthWest
		default:
			return model.SouthEast
		}
	}

	switch {
	case dx != 0 && abs(dx) >= abs(dy):
		if dx < 0 {
			return model.West
		}
		return model.East
	case dy > 0:
		return model.South
	default:
		return model.North
	}
}

// Positions expands the shape facing from center to target into absolute
// positions. The variant origin is anchored on target, and a cell is kept
// only when an effect can travel from target to it.
func (d *Directory) Positions(center, target model.Position, paths PathChecker) []model.Position {
	m, ok := d.Lookup(d.Facing(center, target))
	if !ok {
		return nil
	}

	offsets := m.Offsets()
	out := make([]model.Position, 0, len(offsets))
	for _, off := range offsets {
		pos := target.Offset(int32(off.DX), int32(off.DY))
		if paths.CanThrowObjectTo(target, pos) {
			out = append(out, pos)
		}
	}
	return out
}

// Clone returns a deep copy of the directory.
func (d *Directory) Clone() *Directory {
	out := &Directory{hasCardinal: d.hasCardinal, hasDiagonal: d.hasDiagonal}
	for i, m := range d.variants {
		if m != nil {
			out.variants[i] = m.Copy()
		}
	}
	return out
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
