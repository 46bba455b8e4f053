package world

import (
	"github.com/udisondev/tilecombat/internal/game/combat"
	"github.com/udisondev/tilecombat/internal/game/formula"
	"github.com/udisondev/tilecombat/internal/model"
)

// Creature is a monster, or the common part of a player.
type Creature struct {
	id         uint32
	name       string
	pos        model.Position
	health     int32
	maxHealth  int32
	mana       int32
	maxMana    int32
	armor      int32
	defense    int32
	attack     formula.Range
	immunities map[combat.DamageType]bool
	conditions []*Condition
}

// MonsterStats configures a monster.
type MonsterStats struct {
	Health     int32
	Mana       int32
	Armor      int32
	Defense    int32
	Attack     formula.Range // intrinsic damage range used for its combats
	Immunities []combat.DamageType
}

// PlayerStats configures a player.
type PlayerStats struct {
	Level      int32
	MagicLevel int32
	SkillLevel int32
	Access     int32
	Health     int32
	Mana       int32
	Armor      int32
	Defense    int32
}

func newCreature(id uint32, name string, pos model.Position, health, mana, armor, defense int32) Creature {
	return Creature{
		id:         id,
		name:       name,
		pos:        pos,
		health:     health,
		maxHealth:  health,
		mana:       mana,
		maxMana:    mana,
		armor:      armor,
		defense:    defense,
		immunities: make(map[combat.DamageType]bool),
	}
}

func (c *Creature) ID() uint32               { return c.id }
func (c *Creature) Name() string             { return c.name }
func (c *Creature) Position() model.Position { return c.pos }
func (c *Creature) Health() int32            { return c.health }
func (c *Creature) MaxHealth() int32         { return c.maxHealth }
func (c *Creature) Mana() int32              { return c.mana }
func (c *Creature) MaxMana() int32           { return c.maxMana }
func (c *Creature) IsDead() bool             { return c.health <= 0 }

// IsImmune reports whether damage of type d is ignored.
func (c *Creature) IsImmune(d combat.DamageType) bool {
	return c.immunities[d]
}

// Conditions returns the active conditions.
func (c *Creature) Conditions() []*Condition {
	return c.conditions
}

// HasCondition reports whether a condition of the given type is active.
func (c *Creature) HasCondition(typ string) bool {
	for _, cond := range c.conditions {
		if cond.typ == typ {
			return true
		}
	}
	return false
}

// addCondition replaces an active condition of the same type.
func (c *Creature) addCondition(cond *Condition) {
	for i, old := range c.conditions {
		if old.typ == cond.typ {
			c.conditions[i] = cond
			return
		}
	}
	c.conditions = append(c.conditions, cond)
}

// Player is a creature whose combat magnitude comes from its attributes.
type Player struct {
	Creature
	level      int32
	magicLevel int32
	skillLevel int32
	access     int32
}

func (p *Player) Level() int32       { return p.level }
func (p *Player) MagicLevel() int32  { return p.magicLevel }
func (p *Player) SkillLevel() int32  { return p.skillLevel }
func (p *Player) AccessLevel() int32 { return p.access }

// base returns the shared creature state behind c, or nil for creatures
// that do not belong to a Map.
func base(c combat.Creature) *Creature {
	switch v := c.(type) {
	case *Player:
		return &v.Creature
	case *Creature:
		return v
	default:
		return nil
	}
}

var (
	_ combat.Creature = (*Creature)(nil)
	_ combat.Player   = (*Player)(nil)
)
