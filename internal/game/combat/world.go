package combat

import (
	"github.com/udisondev/tilecombat/internal/game/area"
	"github.com/udisondev/tilecombat/internal/game/formula"
	"github.com/udisondev/tilecombat/internal/model"
)

// Creature is anything that can stand on a tile and be affected by combat.
// Implementations must be comparable by ID; the resolver never compares
// interface values directly.
type Creature interface {
	ID() uint32
	Position() model.Position
}

// Player is a creature with attributes that value formulas read.
// Creatures that are not players use World.CombatValues instead.
type Player interface {
	Creature
	formula.Caster
	// AccessLevel above zero bypasses floor and protection zone checks.
	AccessLevel() int32
}

// TileFlags is a bitmask of tile properties relevant to combat legality.
type TileFlags uint16

const (
	TileBlockProjectile TileFlags = 1 << iota
	TileBlockingImmovable
	TileGround
	TileFloorChange
	TileTeleport
	TileProtectionZone
)

// Has reports whether all bits of flag are set.
func (f TileFlags) Has(flag TileFlags) bool {
	return f&flag == flag
}

// Tile is a single map cell.
type Tile interface {
	Position() model.Position
	Flags() TileFlags
	// Creatures lists the creatures on the tile, topmost first.
	Creatures() []Creature
	// TopCreature returns nil when the tile is empty.
	TopCreature() Creature
}

// Item is a freshly created item instance.
type Item interface {
	ItemID() uint16
	SetOwner(id uint32)
}

// Condition is a status condition. The template held by Params is never
// attached itself; every target receives a Clone.
type Condition interface {
	Clone() Condition
	SetOwner(id uint32)
	// AttachTo hands the condition over to target and reports whether the
	// target accepted it.
	AttachTo(target Creature) bool
}

// World is the map and creature graph combat operates on. All methods are
// called from the game tick goroutine only.
type World interface {
	area.PathChecker

	Tile(pos model.Position) (Tile, bool)

	ChangeHealth(damage DamageType, caster, target Creature, delta int32, blockedByShield, blockedByArmor bool) bool
	ChangeMana(caster, target Creature, delta int32) bool
	// CombatValues returns the intrinsic damage range of a non-player creature.
	CombatValues(c Creature) formula.Range

	CreateItem(id uint16) (Item, error)
	AddItem(tile Tile, item Item) ReturnValue

	MagicEffect(pos model.Position, effect EffectID)
	DistanceEffect(from, to model.Position, effect ShootID)
}
