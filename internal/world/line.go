package world

// LineIterator implements the 2D Bresenham line algorithm for projectile
// paths. It steps through tiles from start to end, both included.
type LineIterator struct {
	currentX, currentY int32
	targetX, targetY   int32
	deltaX, deltaY     int32
	stepX, stepY       int32
	errorXY            int32
	xDominant          bool
	started            bool
}

// NewLineIterator creates a line iterator from (sx, sy) to (ex, ey).
func NewLineIterator(sx, sy, ex, ey int32) *LineIterator {
	it := &LineIterator{
		currentX: sx, currentY: sy,
		targetX: ex, targetY: ey,
		deltaX: abs32(ex - sx),
		deltaY: abs32(ey - sy),
		stepX:  1,
		stepY:  1,
	}
	if sx > ex {
		it.stepX = -1
	}
	if sy > ey {
		it.stepY = -1
	}

	it.xDominant = it.deltaX >= it.deltaY
	if it.xDominant {
		it.errorXY = it.deltaX / 2
	} else {
		it.errorXY = it.deltaY / 2
	}
	return it
}

// Next advances the iterator to the next tile.
// Returns false when the target is reached.
func (it *LineIterator) Next() bool {
	if !it.started {
		it.started = true
		return true
	}

	if it.currentX == it.targetX && it.currentY == it.targetY {
		return false
	}

	if it.xDominant {
		it.currentX += it.stepX
		it.errorXY += it.deltaY
		if it.errorXY >= it.deltaX {
			it.currentY += it.stepY
			it.errorXY -= it.deltaX
		}
	} else {
		it.currentY += it.stepY
		it.errorXY += it.deltaX
		if it.errorXY >= it.deltaY {
			it.currentX += it.stepX
			it.errorXY -= it.deltaY
		}
	}
	return true
}

// X returns current X position.
func (it *LineIterator) X() int32 { return it.currentX }

// Y returns current Y position.
func (it *LineIterator) Y() int32 { return it.currentY }

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
