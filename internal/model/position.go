package model

import "fmt"

// Position is a tile coordinate. Z is the floor level; lower values are
// higher floors.
type Position struct {
	X int32
	Y int32
	Z int32
}

func NewPosition(x, y, z int32) Position {
	return Position{X: x, Y: y, Z: z}
}

// Offset returns the position moved by (dx, dy) on the same floor.
func (p Position) Offset(dx, dy int32) Position {
	p.X += dx
	p.Y += dy
	return p
}

// Delta returns the planar difference other - p.
func (p Position) Delta(other Position) (dx, dy int32) {
	return other.X - p.X, other.Y - p.Y
}

// SameFloor reports whether both positions are on one floor level.
func (p Position) SameFloor(other Position) bool {
	return p.Z == other.Z
}

// DistanceSquared returns the squared planar distance to other.
func (p Position) DistanceSquared(other Position) int64 {
	dx := int64(p.X - other.X)
	dy := int64(p.Y - other.Y)
	return dx*dx + dy*dy
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}
