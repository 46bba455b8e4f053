package world

import (
	"github.com/udisondev/tilecombat/internal/game/combat"
	"github.com/udisondev/tilecombat/internal/model"
)

// MaxItemsPerTile limits the ground items a tile accepts.
const MaxItemsPerTile = 8

// Tile is a map cell. Creatures are kept topmost first.
type Tile struct {
	pos       model.Position
	flags     combat.TileFlags
	creatures []combat.Creature
	items     []combat.Item
}

func (t *Tile) Position() model.Position { return t.pos }

// Flags implements combat.Tile. A blocking field on the tile blocks
// projectiles like a wall.
func (t *Tile) Flags() combat.TileFlags {
	flags := t.flags
	for _, item := range t.items {
		if f, ok := item.(*combat.MagicField); ok && f.Blocking() {
			flags |= combat.TileBlockProjectile
		}
	}
	return flags
}

func (t *Tile) Creatures() []combat.Creature { return t.creatures }

func (t *Tile) TopCreature() combat.Creature {
	if len(t.creatures) == 0 {
		return nil
	}
	return t.creatures[0]
}

// Items returns the ground items, oldest first.
func (t *Tile) Items() []combat.Item { return t.items }

// Walkable reports whether a creature may enter the tile.
func (t *Tile) Walkable() bool {
	flags := t.Flags()
	return flags.Has(combat.TileGround) &&
		!flags.Has(combat.TileBlockingImmovable) &&
		!flags.Has(combat.TileBlockProjectile)
}

// pushCreature puts c on top.
func (t *Tile) pushCreature(c combat.Creature) {
	t.creatures = append([]combat.Creature{c}, t.creatures...)
}

func (t *Tile) removeCreature(id uint32) bool {
	for i, c := range t.creatures {
		if c.ID() == id {
			t.creatures = append(t.creatures[:i:i], t.creatures[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Tile) field() (int, *combat.MagicField) {
	for i, item := range t.items {
		if f, ok := item.(*combat.MagicField); ok {
			return i, f
		}
	}
	return -1, nil
}

func (t *Tile) removeItemAt(i int) {
	t.items = append(t.items[:i:i], t.items[i+1:]...)
}

var _ combat.Tile = (*Tile)(nil)
