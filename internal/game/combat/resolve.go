package combat

import (
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/udisondev/tilecombat/internal/game/formula"
	"github.com/udisondev/tilecombat/internal/model"
)

// Result summarises one area resolution.
type Result struct {
	Tiles    int // tiles that passed the legality filter
	Rejected int // tiles rejected by the legality filter
	Targets  int // creatures the effect was applied to
	Affected int // creatures for which the effect reported success
}

// Success reports whether any creature was affected.
func (r Result) Success() bool { return r.Affected > 0 }

// effectFunc applies the per-creature effect and reports success.
type effectFunc func(caster, target Creature, r formula.Range) bool

func (c *Combat) effectFunc() effectFunc {
	switch c.kind {
	case KindHealth:
		return c.healthFunc
	case KindMana:
		return c.manaFunc
	case KindCondition:
		return c.conditionFunc
	default:
		return nullFunc
	}
}

// magnitude evaluates the formula only for the numeric kinds.
func (c *Combat) magnitude(caster Creature) formula.Range {
	if c.kind != KindHealth && c.kind != KindMana {
		return formula.Range{}
	}
	return c.MinMax(caster)
}

// DoTarget applies the combat to one known creature. The effect lands on the
// target's tile: items are created there, and the impact effect is shown on
// success, or a puff on failure.
func (c *Combat) DoTarget(caster, target Creature) bool {
	if target == nil {
		return false
	}

	success := c.effectFunc()(caster, target, c.magnitude(caster))

	pos := target.Position()
	if tile, ok := c.world.Tile(pos); ok {
		c.spawnItem(caster, tile)
	}
	switch {
	case !success:
		c.world.MagicEffect(pos, EffectPuff)
	case c.params.ImpactEffect != EffectNone:
		c.world.MagicEffect(pos, c.params.ImpactEffect)
	}
	c.distanceEffect(caster, pos)

	slog.Debug("combat on target",
		"kind", c.kind,
		"caster", creatureID(caster),
		"target", target.ID(),
		"success", success)

	return success
}

// DoPosition applies the combat around an impact position. Without an area
// only the impact tile is considered. The projectile effect is shown once if
// any tile was legal.
func (c *Combat) DoPosition(caster Creature, pos model.Position) Result {
	r := c.magnitude(caster)
	apply := c.effectFunc()

	var res Result
	for _, tile := range c.tiles(caster, pos) {
		if CanDoCombat(caster, tile, c.params.Aggressive) != RetNoError {
			res.Rejected++
			continue
		}
		res.Tiles++

		for _, target := range c.targets(caster, tile) {
			res.Targets++
			if apply(caster, target, r) {
				res.Affected++
			}
		}

		c.tileEffects(caster, tile)
	}

	// no projectile towards an impact where nothing was legal
	if res.Tiles > 0 {
		c.distanceEffect(caster, pos)
	}

	slog.Debug("combat on position",
		"kind", c.kind,
		"caster", creatureID(caster),
		"pos", pos,
		"tiles", res.Tiles,
		"rejected", res.Rejected,
		"targets", res.Targets,
		"affected", res.Affected)

	return res
}

// PostCombatEffects shows the projectile effect towards pos and, when the
// caller's own resolution failed, a puff at pos.
func (c *Combat) PostCombatEffects(caster Creature, pos model.Position, success bool) {
	c.distanceEffect(caster, pos)
	if !success {
		c.world.MagicEffect(pos, EffectPuff)
	}
}

// CanDoCombat runs the tile legality checks in order and returns the first
// failure. A nil caster skips the floor and access checks.
func CanDoCombat(caster Creature, tile Tile, aggressive bool) ReturnValue {
	flags := tile.Flags()

	if flags.Has(TileBlockProjectile) || flags.Has(TileBlockingImmovable) {
		return RetNotEnoughRoom
	}
	if !flags.Has(TileGround) {
		return RetNotPossible
	}
	if flags.Has(TileFloorChange) {
		return RetNotEnoughRoom
	}
	if flags.Has(TileTeleport) {
		return RetNotEnoughRoom
	}

	if caster != nil {
		casterZ, tileZ := caster.Position().Z, tile.Position().Z
		if casterZ < tileZ {
			return RetFirstGoDownstairs
		}
		if casterZ > tileZ {
			return RetFirstGoUpstairs
		}
		if player, ok := caster.(Player); ok && player.AccessLevel() > 0 {
			return RetNoError
		}
	}

	if aggressive && flags.Has(TileProtectionZone) {
		return RetActionNotPermittedInProtectionZone
	}
	return RetNoError
}

// tiles expands the impact position into candidate tiles.
func (c *Combat) tiles(caster Creature, pos model.Position) []Tile {
	impact, ok := c.world.Tile(pos)
	if !ok {
		return nil
	}
	if c.area == nil {
		return []Tile{impact}
	}

	center := pos
	if caster != nil {
		center = caster.Position()
	}

	positions := c.area.Positions(center, pos, c.world)
	out := make([]Tile, 0, len(positions))
	for _, p := range positions {
		if tile, ok := c.world.Tile(p); ok {
			out = append(out, tile)
		}
	}
	return out
}

// targets lists the creatures on tile the effect may apply to. With
// TargetCasterOrTopMost only the caster, when it stands on the tile, or
// otherwise the topmost creature is eligible.
func (c *Combat) targets(caster Creature, tile Tile) []Creature {
	if !c.params.TargetCasterOrTopMost {
		// effects may move or remove creatures while we iterate
		return slices.Clone(tile.Creatures())
	}

	if caster != nil && caster.Position() == tile.Position() {
		for _, cr := range tile.Creatures() {
			if cr.ID() == caster.ID() {
				return []Creature{cr}
			}
		}
		return nil
	}

	if top := tile.TopCreature(); top != nil {
		return []Creature{top}
	}
	return nil
}

func (c *Combat) healthFunc(caster, target Creature, r formula.Range) bool {
	p := &c.params
	ok := c.world.ChangeHealth(p.DamageType, caster, target, randomRange(r), p.BlockedByShield, p.BlockedByArmor)
	if ok {
		c.conditionFunc(caster, target, r)
	}
	return ok
}

func (c *Combat) manaFunc(caster, target Creature, r formula.Range) bool {
	ok := c.world.ChangeMana(caster, target, randomRange(r))
	if ok {
		c.conditionFunc(caster, target, r)
	}
	return ok
}

// conditionFunc attaches a clone of the condition template owned by caster.
// Aggressive combat never puts its condition on the caster itself.
func (c *Combat) conditionFunc(caster, target Creature, _ formula.Range) bool {
	if c.params.Aggressive && caster != nil && caster.ID() == target.ID() {
		return false
	}
	if c.params.condition == nil {
		return false
	}

	cond := c.params.condition.Clone()
	if caster != nil {
		cond.SetOwner(caster.ID())
	}
	return cond.AttachTo(target)
}

func nullFunc(_, _ Creature, _ formula.Range) bool { return true }

// tileEffects runs once per legal tile regardless of creature outcomes.
func (c *Combat) tileEffects(caster Creature, tile Tile) {
	c.spawnItem(caster, tile)
	if c.params.ImpactEffect != EffectNone {
		c.world.MagicEffect(tile.Position(), c.params.ImpactEffect)
	}
}

// spawnItem creates the configured item on tile. An item the tile does not
// accept is dropped.
func (c *Combat) spawnItem(caster Creature, tile Tile) {
	if c.params.ItemID == 0 {
		return
	}

	item, err := c.world.CreateItem(c.params.ItemID)
	if err != nil {
		slog.Warn("combat item not created", "item", c.params.ItemID, "error", err)
		return
	}
	if caster != nil {
		item.SetOwner(caster.ID())
	}

	if ret := c.world.AddItem(tile, item); ret != RetNoError {
		slog.Debug("combat item discarded", "item", c.params.ItemID, "pos", tile.Position(), "reason", ret)
	}
}

func (c *Combat) distanceEffect(caster Creature, to model.Position) {
	if caster == nil || c.params.DistanceEffect == ShootNone {
		return
	}
	c.world.DistanceEffect(caster.Position(), to, c.params.DistanceEffect)
}

// randomRange draws uniformly from [r.Min, r.Max], swapping reversed bounds.
func randomRange(r formula.Range) int32 {
	r = r.Ordered()
	if r.Min == r.Max {
		return r.Min
	}
	span := int64(r.Max) - int64(r.Min) + 1
	return int32(int64(r.Min) + rand.Int64N(span))
}

func creatureID(c Creature) uint32 {
	if c == nil {
		return 0
	}
	return c.ID()
}
