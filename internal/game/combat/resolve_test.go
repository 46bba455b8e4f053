package combat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/tilecombat/internal/game/area"
	"github.com/udisondev/tilecombat/internal/game/formula"
	"github.com/udisondev/tilecombat/internal/model"
)

var (
	casterPos = model.NewPosition(100, 100, 7)
	targetPos = model.NewPosition(101, 100, 7)
)

// cross is a north-facing plus shape with the origin in the middle.
var cross = []area.Cell{
	0, 1, 0,
	1, 3, 1,
	0, 1, 0,
}

func newCross(t *testing.T) *area.Directory {
	t.Helper()
	d := area.NewDirectory()
	require.NoError(t, d.SetupPrimary(cross, 3))
	return d
}

func newHealthCombat(t *testing.T, w World, minA, maxA float64) *Combat {
	t.Helper()
	c := New(KindHealth, w)
	require.NoError(t, c.SetFormula(formula.KindLevelMagic, minA, 0, maxA, 0))
	return c
}

func TestCanDoCombat(t *testing.T) {
	caster := newPlayer(1, casterPos, 10)
	gm := newPlayer(2, casterPos, 10)
	gm.access = 3
	monster := newCreature(3, casterPos)

	tests := []struct {
		name       string
		caster     Creature
		flags      TileFlags
		z          int32
		aggressive bool
		want       ReturnValue
	}{
		{"plain ground", caster, TileGround, 7, true, RetNoError},
		{"blocks projectile", caster, TileGround | TileBlockProjectile, 7, true, RetNotEnoughRoom},
		{"blocking immovable", caster, TileGround | TileBlockingImmovable, 7, true, RetNotEnoughRoom},
		{"room checked before ground", caster, TileBlockProjectile, 7, true, RetNotEnoughRoom},
		{"no ground", caster, 0, 7, true, RetNotPossible},
		{"floor change", caster, TileGround | TileFloorChange, 7, true, RetNotEnoughRoom},
		{"teleport", caster, TileGround | TileTeleport, 7, true, RetNotEnoughRoom},
		{"tile on lower floor", caster, TileGround, 8, true, RetFirstGoDownstairs},
		{"tile on upper floor", caster, TileGround, 6, true, RetFirstGoUpstairs},
		{"floor checked before access", gm, TileGround, 6, true, RetFirstGoUpstairs},
		{"aggressive in protection zone", caster, TileGround | TileProtectionZone, 7, true, RetActionNotPermittedInProtectionZone},
		{"non aggressive in protection zone", caster, TileGround | TileProtectionZone, 7, false, RetNoError},
		{"access bypasses protection zone", gm, TileGround | TileProtectionZone, 7, true, RetNoError},
		{"access does not bypass ground", gm, 0, 7, true, RetNotPossible},
		{"monster in protection zone", monster, TileGround | TileProtectionZone, 7, true, RetActionNotPermittedInProtectionZone},
		{"nil caster skips floor check", nil, TileGround, 3, true, RetNoError},
		{"nil caster in protection zone", nil, TileGround | TileProtectionZone, 7, true, RetActionNotPermittedInProtectionZone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tile := &testTile{pos: model.NewPosition(101, 100, tt.z), flags: tt.flags}
			assert.Equal(t, tt.want, CanDoCombat(tt.caster, tile, tt.aggressive))
		})
	}
}

func TestDoPositionWithoutAreaHitsImpactTileOnly(t *testing.T) {
	w := newTestWorld()
	w.addFloor(98, 98, 104, 104, 7)
	caster := newPlayer(1, casterPos, 5)
	victim := newCreature(2, targetPos)
	bystander := newCreature(3, targetPos.Offset(1, 0))
	w.tiles[targetPos].creatures = []Creature{victim}
	w.tiles[bystander.pos].creatures = []Creature{bystander}

	c := newHealthCombat(t, w, -1, -1)
	res := c.DoPosition(caster, targetPos)

	assert.Equal(t, Result{Tiles: 1, Targets: 1, Affected: 1}, res)
	assert.Equal(t, []uint32{2}, w.healthTargets())
}

func TestDoPositionMissingImpactTile(t *testing.T) {
	w := newTestWorld()
	caster := newPlayer(1, casterPos, 5)

	c := newHealthCombat(t, w, -1, -1)
	c.SetArea(newCross(t))
	c.SetParams(withVisuals(c.Params()))

	res := c.DoPosition(caster, targetPos)

	assert.Equal(t, Result{}, res)
	assert.Empty(t, w.health)
	assert.Empty(t, w.magic)
	assert.Empty(t, w.distance)
}

func withVisuals(p Params) Params {
	p.ImpactEffect = EffectExplosion
	p.DistanceEffect = ShootFire
	return p
}

func TestDoPositionAreaExpandsAroundImpact(t *testing.T) {
	w := newTestWorld()
	w.addFloor(95, 95, 110, 110, 7)
	caster := newPlayer(1, casterPos, 5)
	impact := model.NewPosition(100, 96, 7)

	var inside []uint32
	for i, off := range []area.Offset{{DX: 0, DY: -1}, {DX: -1, DY: 0}, {DX: 0, DY: 0}, {DX: 1, DY: 0}, {DX: 0, DY: 1}} {
		id := uint32(10 + i)
		pos := impact.Offset(int32(off.DX), int32(off.DY))
		w.tiles[pos].creatures = []Creature{newCreature(id, pos)}
		inside = append(inside, id)
	}
	outside := impact.Offset(1, 1)
	w.tiles[outside].creatures = []Creature{newCreature(99, outside)}

	c := newHealthCombat(t, w, -1, -1)
	c.SetArea(newCross(t))
	c.SetParams(withVisuals(c.Params()))

	res := c.DoPosition(caster, impact)

	assert.Equal(t, Result{Tiles: 5, Targets: 5, Affected: 5}, res)
	assert.ElementsMatch(t, inside, w.healthTargets())
	assert.Len(t, w.magic, 5, "impact effect once per legal tile")
	require.Len(t, w.distance, 1, "projectile once per resolution")
	assert.Equal(t, distanceCall{from: casterPos, to: impact, effect: ShootFire}, w.distance[0])
}

func TestDoPositionSkipsBlockedPaths(t *testing.T) {
	w := newTestWorld()
	w.addFloor(95, 95, 110, 110, 7)
	caster := newPlayer(1, casterPos, 5)
	blocked := targetPos.Offset(0, -1)
	w.blockedPaths[blocked] = true
	w.tiles[blocked].creatures = []Creature{newCreature(7, blocked)}

	c := newHealthCombat(t, w, -1, -1)
	c.SetArea(newCross(t))

	res := c.DoPosition(caster, targetPos)

	assert.Equal(t, 4, res.Tiles)
	assert.Empty(t, w.health)
}

func TestProtectionZoneBlocksAggressiveArea(t *testing.T) {
	w := newTestWorld()
	for x := int32(95); x <= 110; x++ {
		for y := int32(95); y <= 110; y++ {
			pos := model.NewPosition(x, y, 7)
			w.addTile(pos, TileProtectionZone, newCreature(uint32(x*1000+y), pos))
		}
	}
	caster := newPlayer(1, casterPos, 5)

	for _, shape := range []*area.Directory{nil, newCross(t)} {
		c := New(KindHealth, w)
		c.SetArea(shape)
		require.NoError(t, c.SetFormula(formula.KindLevelMagic, -1, 0, -1, 0))
		c.SetParams(withVisuals(c.Params()))

		res := c.DoPosition(caster, targetPos)
		assert.Zero(t, res.Tiles)
		assert.Positive(t, res.Rejected)
	}

	assert.Empty(t, w.health, "effect function must never run in a protection zone")
	assert.Empty(t, w.magic)
	assert.Empty(t, w.distance)
}

func TestCasterOrTopMostOnCasterTile(t *testing.T) {
	w := newTestWorld()
	caster := newPlayer(1, casterPos, 5)
	w.addTile(casterPos, 0, newCreature(2, casterPos), caster, newCreature(3, casterPos))

	c := New(KindHealth, w)
	require.NoError(t, c.SetFormula(formula.KindLevelMagic, 1, 0, 1, 0))
	require.True(t, c.SetParam(ParamTargetCasterOrTopMost, 1))
	require.True(t, c.SetParam(ParamAggressive, 0))

	res := c.DoPosition(caster, casterPos)

	assert.Equal(t, Result{Tiles: 1, Targets: 1, Affected: 1}, res)
	assert.Equal(t, []uint32{1}, w.healthTargets())
}

func TestCasterOrTopMostOnOtherTile(t *testing.T) {
	w := newTestWorld()
	caster := newPlayer(1, casterPos, 5)
	w.addTile(casterPos, 0, caster)
	w.addTile(targetPos, 0, newCreature(5, targetPos), newCreature(6, targetPos))

	c := newHealthCombat(t, w, -1, -1)
	require.True(t, c.SetParam(ParamTargetCasterOrTopMost, 1))

	c.DoPosition(caster, targetPos)
	assert.Equal(t, []uint32{5}, w.healthTargets())
}

func TestAllCreaturesOnTileWithoutTopMost(t *testing.T) {
	w := newTestWorld()
	caster := newPlayer(1, casterPos, 5)
	w.addTile(targetPos, 0, newCreature(5, targetPos), newCreature(6, targetPos), newCreature(7, targetPos))

	c := newHealthCombat(t, w, -1, -1)
	c.DoPosition(caster, targetPos)

	assert.Equal(t, []uint32{5, 6, 7}, w.healthTargets())
}

func TestHealthEqualBoundsIsDeterministic(t *testing.T) {
	w := newTestWorld()
	caster := newPlayer(1, casterPos, 5) // raw = 10
	target := newCreature(2, targetPos)
	w.addTile(targetPos, 0, target)

	c := newHealthCombat(t, w, 1, 1)
	require.Equal(t, formula.Range{Min: 10, Max: 10}, c.MinMax(caster))

	for range 50 {
		require.True(t, c.DoTarget(caster, target))
	}
	for _, h := range w.health {
		assert.Equal(t, int32(10), h.delta)
	}
}

func TestRandomRangeStaysInBounds(t *testing.T) {
	seen := make(map[int32]bool)
	for range 500 {
		v := randomRange(formula.Range{Min: -3, Max: 1})
		require.GreaterOrEqual(t, v, int32(-3))
		require.LessOrEqual(t, v, int32(1))
		seen[v] = true
	}
	assert.Len(t, seen, 5, "every value of a small range is drawn")

	for range 100 {
		v := randomRange(formula.Range{Min: 8, Max: 4})
		require.GreaterOrEqual(t, v, int32(4))
		require.LessOrEqual(t, v, int32(8))
	}
}

func TestConditionAttachment(t *testing.T) {
	tests := []struct {
		name       string
		aggressive bool
		self       bool
		wantAttach bool
	}{
		{"aggressive on other", true, false, true},
		{"aggressive on self", true, true, false},
		{"friendly on self", false, true, true},
		{"friendly on other", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld()
			caster := newPlayer(1, casterPos, 5)
			var target Creature = newCreature(2, targetPos)
			if tt.self {
				target = caster
			}

			tmpl := newTestCondition("burning")
			c := newHealthCombat(t, w, -1, -1)
			c.SetCondition(tmpl)
			c.params.Aggressive = tt.aggressive

			require.True(t, c.DoTarget(caster, target))

			if !tt.wantAttach {
				assert.Empty(t, *tmpl.attachments)
				return
			}
			require.Len(t, *tmpl.attachments, 1)
			got := (*tmpl.attachments)[0]
			assert.Equal(t, target.ID(), got.target)
			assert.Equal(t, uint32(1), got.owner)
			assert.NotSame(t, tmpl, got.cond)
			assert.Zero(t, tmpl.owner, "template itself is never owner-tagged")
		})
	}
}

func TestHealthFailureSuppressesCondition(t *testing.T) {
	w := newTestWorld()
	caster := newPlayer(1, casterPos, 5)
	w.addTile(targetPos, 0, newCreature(2, targetPos), newCreature(3, targetPos))
	w.failHealth[2] = true

	tmpl := newTestCondition("poisoned")
	c := newHealthCombat(t, w, -1, -1)
	c.SetCondition(tmpl)

	res := c.DoPosition(caster, targetPos)

	assert.Equal(t, Result{Tiles: 1, Targets: 2, Affected: 1}, res)
	require.Len(t, *tmpl.attachments, 1)
	assert.Equal(t, uint32(3), (*tmpl.attachments)[0].target)
}

func TestRepeatedResolutionsCloneEveryTime(t *testing.T) {
	w := newTestWorld()
	caster := newPlayer(1, casterPos, 5)
	a, b := newCreature(2, targetPos), newCreature(3, targetPos)
	w.addTile(targetPos, 0, a, b)

	tmpl := newTestCondition("slowed")
	c := New(KindCondition, w)
	c.SetCondition(tmpl)
	clonesAfterSetup := *tmpl.clones

	c.DoPosition(caster, targetPos)
	c.DoPosition(caster, targetPos)

	attachments := *tmpl.attachments
	require.Len(t, attachments, 4)
	assert.Equal(t, clonesAfterSetup+4, *tmpl.clones)
	for i := range attachments {
		for j := i + 1; j < len(attachments); j++ {
			assert.NotSame(t, attachments[i].cond, attachments[j].cond)
		}
	}
}

func TestManaCombat(t *testing.T) {
	w := newTestWorld()
	caster := newPlayer(1, casterPos, 10)
	target := newCreature(2, targetPos)
	w.addTile(targetPos, 0, target)
	tmpl := newTestCondition("drained")

	c := New(KindMana, w)
	require.NoError(t, c.SetFormula(formula.KindLevelMagic, -0.5, 0, -0.5, 0))
	c.SetCondition(tmpl)

	require.True(t, c.DoTarget(caster, target))

	assert.Empty(t, w.health)
	assert.Equal(t, []manaCall{{caster: 1, target: 2, delta: -10}}, w.mana)
	assert.Len(t, *tmpl.attachments, 1)

	w.failMana[2] = true
	assert.False(t, c.DoTarget(caster, target))
	assert.Len(t, *tmpl.attachments, 1)
}

func TestConditionCombatSkipsFormula(t *testing.T) {
	w := newTestWorld()
	caster := newPlayer(1, casterPos, 10)
	w.addTile(targetPos, 0, newCreature(2, targetPos))
	host := &countingHost{}
	tmpl := newTestCondition("paralyzed")

	c := New(KindCondition, w)
	require.NoError(t, c.SetCallback(formula.KindLevelMagic, "unused", host))
	c.SetCondition(tmpl)

	res := c.DoPosition(caster, targetPos)

	assert.Equal(t, Result{Tiles: 1, Targets: 1, Affected: 1}, res)
	assert.Zero(t, host.calls)
	assert.Empty(t, w.health)
	assert.Empty(t, w.mana)
}

func TestConditionCombatWithoutTemplateFails(t *testing.T) {
	w := newTestWorld()
	caster := newPlayer(1, casterPos, 10)
	target := newCreature(2, targetPos)
	w.addTile(targetPos, 0, target)

	c := New(KindCondition, w)
	c.params.ImpactEffect = EffectBlueShimmer

	assert.False(t, c.DoTarget(caster, target))
	assert.Equal(t, []magicCall{{pos: targetPos, effect: EffectPuff}}, w.magic)
}

func TestNoneCombatOnlyTileEffects(t *testing.T) {
	w := newTestWorld()
	w.addFloor(95, 95, 110, 110, 7)
	caster := newPlayer(1, casterPos, 10)
	w.tiles[targetPos].creatures = []Creature{newCreature(2, targetPos)}

	c := New(KindNone, w)
	c.SetArea(newCross(t))
	require.True(t, c.SetParam(ParamCreateItem, 1492))
	require.True(t, c.SetParam(ParamEffect, uint32(EffectFireArea)))

	res := c.DoPosition(caster, targetPos)

	assert.Equal(t, 5, res.Tiles)
	assert.Equal(t, 1, res.Affected, "none reports success for every creature")
	assert.Empty(t, w.health)
	assert.Empty(t, w.mana)
	assert.Len(t, w.placed, 5)
	for _, item := range w.placed {
		assert.Equal(t, uint16(1492), item.id)
		assert.Equal(t, uint32(1), item.owner)
	}
	assert.Len(t, w.magic, 5)
	assert.Empty(t, w.distance, "no distance effect configured")
}

func TestItemPlacementFailureDiscardsItem(t *testing.T) {
	w := newTestWorld()
	caster := newPlayer(1, casterPos, 10)
	w.addTile(targetPos, 0, newCreature(2, targetPos))
	w.addItemRet = RetTileIsFull

	c := newHealthCombat(t, w, -1, -1)
	c.params.ItemID = 1492
	c.params.ImpactEffect = EffectFireArea

	res := c.DoPosition(caster, targetPos)

	assert.Equal(t, 1, res.Affected)
	assert.Len(t, w.created, 1)
	assert.Empty(t, w.placed)
	assert.Equal(t, []magicCall{{pos: targetPos, effect: EffectFireArea}}, w.magic)
}

func TestItemCreationFailureIsSkipped(t *testing.T) {
	w := newTestWorld()
	caster := newPlayer(1, casterPos, 10)
	w.addTile(targetPos, 0)
	w.createErr = errors.New("unknown item")

	c := New(KindNone, w)
	c.params.ItemID = 9999
	c.params.ImpactEffect = EffectPoisonArea

	res := c.DoPosition(caster, targetPos)

	assert.Equal(t, 1, res.Tiles)
	assert.Empty(t, w.placed)
	assert.Len(t, w.magic, 1)
}

func TestNilCasterItemHasNoOwner(t *testing.T) {
	w := newTestWorld()
	w.addTile(targetPos, 0)

	c := New(KindNone, w)
	c.params.ItemID = 1497
	c.params.DistanceEffect = ShootEnergy

	res := c.DoPosition(nil, targetPos)

	assert.Equal(t, 1, res.Tiles)
	require.Len(t, w.placed, 1)
	assert.Zero(t, w.placed[0].owner)
	assert.Empty(t, w.distance)
}

func TestDoTargetFailureShowsPuff(t *testing.T) {
	w := newTestWorld()
	caster := newPlayer(1, casterPos, 10)
	target := newCreature(2, targetPos)
	w.addTile(targetPos, 0, target)
	w.failHealth[2] = true

	c := newHealthCombat(t, w, -1, -1)
	c.SetParams(withVisuals(c.Params()))

	assert.False(t, c.DoTarget(caster, target))
	assert.Equal(t, []magicCall{{pos: targetPos, effect: EffectPuff}}, w.magic)
	assert.Len(t, w.distance, 1)
}

func TestNonPlayerCasterUsesCombatValues(t *testing.T) {
	w := newTestWorld()
	monster := newCreature(40, casterPos)
	target := newCreature(2, targetPos)
	w.addTile(targetPos, 0, target)
	w.combatValues[40] = formula.Range{Min: -25, Max: -25}
	host := &countingHost{}

	c := New(KindHealth, w)
	require.NoError(t, c.SetCallback(formula.KindLevelMagic, "ignored", host))

	require.True(t, c.DoTarget(monster, target))
	assert.Equal(t, int32(-25), w.health[0].delta)
	assert.Zero(t, host.calls)
}

func TestScriptFailureContinuesWithZeroRange(t *testing.T) {
	w := newTestWorld()
	w.addFloor(95, 95, 110, 110, 7)
	caster := newPlayer(1, casterPos, 10)
	for _, pos := range []model.Position{targetPos, targetPos.Offset(1, 0), targetPos.Offset(0, 1)} {
		w.tiles[pos].creatures = []Creature{newCreature(uint32(pos.X*1000+pos.Y), pos)}
	}
	host := &countingHost{err: errors.New("runtime error")}

	c := New(KindHealth, w)
	c.SetArea(newCross(t))
	require.NoError(t, c.SetCallback(formula.KindLevelMagic, "broken", host))

	res := c.DoPosition(caster, targetPos)

	assert.Equal(t, 1, host.calls, "formula is evaluated once per resolution")
	assert.Equal(t, 3, res.Targets)
	require.Len(t, w.health, 3)
	for _, h := range w.health {
		assert.Zero(t, h.delta)
	}
}

func TestHealthHonoursBlockFlags(t *testing.T) {
	w := newTestWorld()
	caster := newPlayer(1, casterPos, 10)
	target := newCreature(2, targetPos)

	c := newHealthCombat(t, w, -1, -1)
	require.True(t, c.SetParam(ParamDamageType, uint32(DamagePhysical)))
	require.True(t, c.SetParam(ParamBlockedByArmor, 1))
	require.True(t, c.SetParam(ParamBlockedByShield, 1))

	c.DoTarget(caster, target)

	require.Len(t, w.health, 1)
	assert.Equal(t, healthCall{damage: DamagePhysical, caster: 1, target: 2, delta: -20, shield: true, armor: true}, w.health[0])
}

func TestFloorMismatchRejectsArea(t *testing.T) {
	w := newTestWorld()
	lower := model.NewPosition(101, 100, 8)
	w.addTile(lower, 0, newCreature(2, lower))
	caster := newPlayer(1, casterPos, 10)

	c := newHealthCombat(t, w, -1, -1)
	res := c.DoPosition(caster, lower)

	assert.Equal(t, Result{Rejected: 1}, res)
	assert.Empty(t, w.health)
}

func TestPostCombatEffects(t *testing.T) {
	w := newTestWorld()
	caster := newPlayer(1, casterPos, 10)

	c := New(KindNone, w)
	c.params.DistanceEffect = ShootArrow

	c.PostCombatEffects(caster, targetPos, true)
	assert.Len(t, w.distance, 1)
	assert.Empty(t, w.magic)

	c.PostCombatEffects(caster, targetPos, false)
	assert.Len(t, w.distance, 2)
	assert.Equal(t, []magicCall{{pos: targetPos, effect: EffectPuff}}, w.magic)
}

// Scenario: fire bolt with impact and projectile effects against a creature
// on a legal tile.
func TestScenarioSingleTargetFireBolt(t *testing.T) {
	w := newTestWorld()
	caster := newPlayer(1, casterPos, 10)
	target := newCreature(2, targetPos)
	w.addTile(casterPos, 0, caster)
	w.addTile(targetPos, 0, target)

	c := New(KindHealth, w)
	require.True(t, c.SetParam(ParamDamageType, uint32(DamageFire)))
	require.True(t, c.SetParam(ParamEffect, uint32(EffectFireArea)))
	require.True(t, c.SetParam(ParamDistanceEffect, uint32(ShootFire)))
	require.NoError(t, c.SetFormula(formula.KindLevelMagic, 1.0, 0, 1.0, 0))

	require.Equal(t, formula.Range{Min: 20, Max: 20}, c.MinMax(caster))
	require.True(t, c.DoTarget(caster, target))

	require.Len(t, w.health, 1)
	assert.Equal(t, DamageFire, w.health[0].damage)
	assert.Equal(t, int32(20), w.health[0].delta)
	assert.Equal(t, []magicCall{{pos: targetPos, effect: EffectFireArea}}, w.magic)
	assert.Equal(t, []distanceCall{{from: casterPos, to: targetPos, effect: ShootFire}}, w.distance)
}

// Scenario: same fire bolt, but the target tile has no ground.
func TestScenarioNoGroundSkipsEverything(t *testing.T) {
	w := newTestWorld()
	caster := newPlayer(1, casterPos, 10)
	target := newCreature(2, targetPos)
	w.tiles[targetPos] = &testTile{pos: targetPos, flags: 0, creatures: []Creature{target}}

	c := New(KindHealth, w)
	c.SetParam(ParamDamageType, uint32(DamageFire))
	c.SetParam(ParamEffect, uint32(EffectFireArea))
	c.SetParam(ParamDistanceEffect, uint32(ShootFire))
	require.NoError(t, c.SetFormula(formula.KindLevelMagic, 1.0, 0, 1.0, 0))

	res := c.DoPosition(caster, targetPos)

	assert.Equal(t, Result{Rejected: 1}, res)
	assert.Empty(t, w.health)
	assert.Empty(t, w.magic)
	assert.Empty(t, w.distance)
}

type countingHost struct {
	calls    int
	min, max int32
	err      error
}

func (h *countingHost) Invoke(string, uint32, formula.Kind, ...int32) (int32, int32, error) {
	h.calls++
	return h.min, h.max, h.err
}
