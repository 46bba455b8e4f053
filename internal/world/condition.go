package world

import (
	"time"

	"github.com/udisondev/tilecombat/internal/game/combat"
)

// Condition is a periodic status effect. Damage is applied once per
// interval until the ticks run out; a condition without damage only marks
// the creature (paralysis, haste).
type Condition struct {
	typ        string
	ticks      int32
	interval   time.Duration
	damage     int32
	damageType combat.DamageType
	owner      uint32
	elapsed    time.Duration
}

// NewCondition creates a condition template.
func NewCondition(typ string, ticks int32, interval time.Duration, damage int32, damageType combat.DamageType) *Condition {
	return &Condition{
		typ:        typ,
		ticks:      ticks,
		interval:   interval,
		damage:     damage,
		damageType: damageType,
	}
}

func (c *Condition) Type() string                  { return c.typ }
func (c *Condition) Ticks() int32                  { return c.ticks }
func (c *Condition) Owner() uint32                 { return c.owner }
func (c *Condition) Damage() int32                 { return c.damage }
func (c *Condition) DamageType() combat.DamageType { return c.damageType }

// Clone implements combat.Condition.
func (c *Condition) Clone() combat.Condition {
	cp := *c
	cp.elapsed = 0
	return &cp
}

// SetOwner implements combat.Condition.
func (c *Condition) SetOwner(id uint32) { c.owner = id }

// AttachTo implements combat.Condition. Creatures immune to the damage type
// reject it, as do dead creatures and creatures of other worlds.
func (c *Condition) AttachTo(target combat.Creature) bool {
	cr := base(target)
	if cr == nil || cr.IsDead() {
		return false
	}
	if c.damage < 0 && cr.IsImmune(c.damageType) {
		return false
	}
	cr.addCondition(c)
	return true
}

// advance consumes elapsed time and returns the number of ticks due.
func (c *Condition) advance(elapsed time.Duration) int32 {
	if c.interval <= 0 {
		due := c.ticks
		c.ticks = 0
		return due
	}

	c.elapsed += elapsed
	var due int32
	for c.elapsed >= c.interval && c.ticks > 0 {
		c.elapsed -= c.interval
		c.ticks--
		due++
	}
	return due
}

func (c *Condition) expired() bool { return c.ticks <= 0 }
