package main

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/udisondev/tilecombat/internal/config"
	"github.com/udisondev/tilecombat/internal/data"
	"github.com/udisondev/tilecombat/internal/game/combat"
	"github.com/udisondev/tilecombat/internal/game/formula"
	"github.com/udisondev/tilecombat/internal/model"
	"github.com/udisondev/tilecombat/internal/world"
)

// tick is the simulated time between two casts.
const tick = 2 * time.Second

var monsterStats = world.MonsterStats{
	Health:  120,
	Armor:   2,
	Defense: 2,
	Attack:  formula.Range{Min: -25, Max: -5},
}

// living is what the arena reports about a creature.
type living interface {
	combat.Creature
	Name() string
	Health() int32
}

// arena is a rectangular floor with one player caster and scattered
// monsters.
type arena struct {
	cfg    config.Demo
	m      *world.Map
	caster *world.Player
}

func newCondition(def data.ConditionDef, damage combat.DamageType) (combat.Condition, error) {
	return world.NewCondition(def.Type, def.Ticks, def.Interval, def.Damage, damage), nil
}

func newArena(cfg config.Demo, cat *data.Catalog) (*arena, error) {
	m := world.NewMap()
	m.FillFloor(0, 0, cfg.Width-1, cfg.Height-1, cfg.Floor, combat.TileGround)
	for y := range min(cfg.ProtectionZoneRows, cfg.Height) {
		for x := range cfg.Width {
			m.SetTile(model.NewPosition(x, y, cfg.Floor), combat.TileGround|combat.TileProtectionZone)
		}
	}

	if err := registerItems(m, cat); err != nil {
		return nil, err
	}

	caster, err := m.AddPlayer("caster", model.NewPosition(cfg.Width/2, cfg.Height-1, cfg.Floor), world.PlayerStats{
		Level:      cfg.CasterLevel,
		MagicLevel: cfg.CasterMagicLevel,
		SkillLevel: cfg.CasterMagicLevel,
		Health:     500,
		Mana:       500,
	})
	if err != nil {
		return nil, err
	}

	a := &arena{cfg: cfg, m: m, caster: caster}
	placed := a.spawnMonsters(cfg.Monsters)
	slog.Info("arena ready",
		"width", cfg.Width,
		"height", cfg.Height,
		"floor", cfg.Floor,
		"monsters", placed)
	return a, nil
}

// registerItems makes catalog fields and plain created items known to m.
func registerItems(m *world.Map, cat *data.Catalog) error {
	fields := make(map[uint16]bool)
	for _, f := range cat.Fields() {
		dt, err := combat.ParseDamageType(f.DamageType)
		if err != nil {
			return fmt.Errorf("field %d: %w", f.ItemID, err)
		}
		var tmpl combat.Condition
		if f.Condition != nil {
			tmpl = world.NewCondition(f.Condition.Type, f.Condition.Ticks, f.Condition.Interval, f.Condition.Damage, dt)
		}
		m.RegisterField(f.ItemID, dt, f.Blocking, tmpl)
		fields[f.ItemID] = true
	}

	for _, name := range cat.Names() {
		def, _ := cat.Get(name)
		if id := def.Params.CreateItem; id != 0 && !fields[id] {
			m.RegisterItem(id, name)
		}
	}
	return nil
}

// spawnMonsters scatters up to n monsters outside the protection zone, one
// per tile, and returns how many were placed.
func (a *arena) spawnMonsters(n int) int {
	free := a.openTiles()
	rand.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })

	placed := 0
	for _, pos := range free[:min(n, len(free))] {
		if _, err := a.m.AddMonster(fmt.Sprintf("rat #%d", placed+1), pos, monsterStats); err != nil {
			slog.Warn("monster not placed", "pos", pos, "err", err)
			continue
		}
		placed++
	}
	return placed
}

func (a *arena) openTiles() []model.Position {
	var out []model.Position
	for y := a.cfg.ProtectionZoneRows; y < a.cfg.Height-1; y++ {
		for x := range a.cfg.Width {
			pos := model.NewPosition(x, y, a.cfg.Floor)
			if t, ok := a.m.TileAt(pos); ok && t.Walkable() && len(t.Creatures()) == 0 {
				out = append(out, pos)
			}
		}
	}
	return out
}

// nearestMonster returns the living monster closest to the caster.
func (a *arena) nearestMonster() living {
	var (
		best living
		dist int64
	)
	for _, pos := range a.occupied() {
		t, _ := a.m.TileAt(pos)
		for _, cr := range t.Creatures() {
			c, ok := cr.(living)
			if !ok || c.ID() == a.caster.ID() {
				continue
			}
			if d := a.caster.Position().DistanceSquared(c.Position()); best == nil || d < dist {
				best, dist = c, d
			}
		}
	}
	return best
}

func (a *arena) occupied() []model.Position {
	var out []model.Position
	for y := range a.cfg.Height {
		for x := range a.cfg.Width {
			pos := model.NewPosition(x, y, a.cfg.Floor)
			if t, ok := a.m.TileAt(pos); ok && len(t.Creatures()) > 0 {
				out = append(out, pos)
			}
		}
	}
	return out
}

// castAll casts every combat once in name order, advancing conditions by one
// tick after each cast.
func (a *arena) castAll(ctx context.Context, combats map[string]*combat.Combat) error {
	for _, name := range slices.Sorted(maps.Keys(combats)) {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.cast(name, combats[name])
		a.m.Advance(tick)
	}

	slog.Info("simulation finished",
		"creatures", a.m.CreatureCount(),
		"caster_health", a.caster.Health(),
		"caster_mana", a.caster.Mana())
	return nil
}

func (a *arena) cast(name string, c *combat.Combat) {
	var target living = a.caster
	if c.Params().Aggressive {
		target = a.nearestMonster()
		if target == nil {
			slog.Info("no target left", "combat", name)
			return
		}
	}

	if c.Area() == nil {
		ok := c.DoTarget(a.caster, target)
		slog.Info("cast on target",
			"combat", name,
			"target", target.Name(),
			"ok", ok,
			"target_health", target.Health())
	} else {
		res := c.DoPosition(a.caster, target.Position())
		slog.Info("cast on position",
			"combat", name,
			"pos", target.Position(),
			"tiles", res.Tiles,
			"rejected", res.Rejected,
			"targets", res.Targets,
			"affected", res.Affected)
	}

	for _, e := range a.m.DrainEffects() {
		if e.Distance {
			slog.Debug("distance effect", "from", e.From, "to", e.To, "shoot", e.Shoot)
			continue
		}
		slog.Debug("magic effect", "pos", e.To, "effect", e.Magic)
	}
}
