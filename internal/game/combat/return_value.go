package combat

// ReturnValue is the outcome of a world rule check or mutation.
type ReturnValue uint8

const (
	RetNoError ReturnValue = iota
	RetNotPossible
	RetNotEnoughRoom
	RetFirstGoDownstairs
	RetFirstGoUpstairs
	RetActionNotPermittedInProtectionZone
	RetTileIsFull
)

func (r ReturnValue) String() string {
	switch r {
	case RetNoError:
		return "no error"
	case RetNotPossible:
		return "sorry, not possible"
	case RetNotEnoughRoom:
		return "there is not enough room"
	case RetFirstGoDownstairs:
		return "first go downstairs"
	case RetFirstGoUpstairs:
		return "first go upstairs"
	case RetActionNotPermittedInProtectionZone:
		return "this action is not permitted in a protection zone"
	case RetTileIsFull:
		return "tile is full"
	default:
		return "unknown"
	}
}
