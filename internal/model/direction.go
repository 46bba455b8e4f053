package model

// Direction is one of the four cardinal or four diagonal facings.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
	SouthWest
	SouthEast
	NorthWest
	NorthEast
)

// DirectionCount is the number of facings.
const DirectionCount = 8

// IsDiagonal reports whether d is one of the four diagonal facings.
func (d Direction) IsDiagonal() bool {
	return d >= SouthWest && d <= NorthEast
}

// Valid reports whether d is a known facing.
func (d Direction) Valid() bool {
	return d < DirectionCount
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	case SouthWest:
		return "southwest"
	case SouthEast:
		return "southeast"
	case NorthWest:
		return "northwest"
	case NorthEast:
		return "northeast"
	default:
		return "unknown"
	}
}
