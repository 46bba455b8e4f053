package world

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/tilecombat/internal/game/combat"
	"github.com/udisondev/tilecombat/internal/game/formula"
	"github.com/udisondev/tilecombat/internal/model"
)

// Projectiles travel at most this far from the thrower.
const (
	ThrowRangeX = 8
	ThrowRangeY = 6
)

var (
	ErrNoTile         = errors.New("no tile at position")
	ErrTileBlocked    = errors.New("tile is not walkable")
	ErrUnknownItem    = errors.New("unknown item id")
	ErrNoSuchCreature = errors.New("no such creature")
)

// Effect is one visual effect sent to observers. Distance effects carry
// both ends; magic effects only To.
type Effect struct {
	Distance bool
	From     model.Position
	To       model.Position
	Magic    combat.EffectID
	Shoot    combat.ShootID
}

// Map is an in-memory tile map with its creatures and items. It implements
// combat.World and, like the combat engine, is driven from a single
// goroutine.
type Map struct {
	tiles     map[model.Position]*Tile
	creatures map[uint32]combat.Creature
	items     map[uint16]string
	fields    map[uint16]fieldTemplate
	effects   []Effect
	ids       *ObjectIDGenerator
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{
		tiles:     make(map[model.Position]*Tile),
		creatures: make(map[uint32]combat.Creature),
		items:     make(map[uint16]string),
		fields:    make(map[uint16]fieldTemplate),
		ids:       NewObjectIDGenerator(),
	}
}

// SetTile creates or replaces the tile at pos. Creatures and items on a
// replaced tile are kept.
func (m *Map) SetTile(pos model.Position, flags combat.TileFlags) *Tile {
	if t, ok := m.tiles[pos]; ok {
		t.flags = flags
		return t
	}
	t := &Tile{pos: pos, flags: flags}
	m.tiles[pos] = t
	return t
}

// FillFloor creates tiles with flags for the rectangle [x0..x1] x [y0..y1].
func (m *Map) FillFloor(x0, y0, x1, y1, z int32, flags combat.TileFlags) {
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			m.SetTile(model.NewPosition(x, y, z), flags)
		}
	}
}

// TileAt returns the concrete tile at pos.
func (m *Map) TileAt(pos model.Position) (*Tile, bool) {
	t, ok := m.tiles[pos]
	return t, ok
}

// Tile implements combat.World.
func (m *Map) Tile(pos model.Position) (combat.Tile, bool) {
	t, ok := m.tiles[pos]
	if !ok {
		return nil, false
	}
	return t, true
}

// AddPlayer places a new player on top of the creatures at pos.
func (m *Map) AddPlayer(name string, pos model.Position, stats PlayerStats) (*Player, error) {
	tile, err := m.enterable(pos)
	if err != nil {
		return nil, fmt.Errorf("adding player %q: %w", name, err)
	}

	p := &Player{
		Creature:   newCreature(m.ids.NextPlayerID(), name, pos, stats.Health, stats.Mana, stats.Armor, stats.Defense),
		level:      stats.Level,
		magicLevel: stats.MagicLevel,
		skillLevel: stats.SkillLevel,
		access:     stats.Access,
	}
	tile.pushCreature(p)
	m.creatures[p.id] = p
	return p, nil
}

// AddMonster places a new monster on top of the creatures at pos.
func (m *Map) AddMonster(name string, pos model.Position, stats MonsterStats) (*Creature, error) {
	tile, err := m.enterable(pos)
	if err != nil {
		return nil, fmt.Errorf("adding monster %q: %w", name, err)
	}

	c := newCreature(m.ids.NextMonsterID(), name, pos, stats.Health, stats.Mana, stats.Armor, stats.Defense)
	c.attack = stats.Attack
	for _, d := range stats.Immunities {
		c.immunities[d] = true
	}
	mon := &c
	tile.pushCreature(mon)
	m.creatures[mon.id] = mon
	return mon, nil
}

func (m *Map) enterable(pos model.Position) (*Tile, error) {
	tile, ok := m.tiles[pos]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrNoTile, pos)
	}
	if !tile.Walkable() {
		return nil, fmt.Errorf("%w: %s", ErrTileBlocked, pos)
	}
	return tile, nil
}

// Creature returns the living creature with id.
func (m *Map) Creature(id uint32) (combat.Creature, bool) {
	c, ok := m.creatures[id]
	return c, ok
}

// CreatureCount returns the number of living creatures.
func (m *Map) CreatureCount() int { return len(m.creatures) }

// RemoveCreature takes the creature off the map.
func (m *Map) RemoveCreature(id uint32) {
	c, ok := m.creatures[id]
	if !ok {
		return
	}
	if tile, ok := m.tiles[c.Position()]; ok {
		tile.removeCreature(id)
	}
	delete(m.creatures, id)
}

// MoveCreature moves a creature to an adjacent or distant tile. Fields on
// the destination affect the creature; a blocking field it is moved onto
// is destroyed.
func (m *Map) MoveCreature(id uint32, to model.Position) error {
	c, ok := m.creatures[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoSuchCreature, id)
	}
	dst, ok := m.tiles[to]
	if !ok {
		return fmt.Errorf("%w %s", ErrNoTile, to)
	}
	if !dst.Flags().Has(combat.TileGround) || dst.flags.Has(combat.TileBlockingImmovable) {
		return fmt.Errorf("%w: %s", ErrTileBlocked, to)
	}

	if src, ok := m.tiles[c.Position()]; ok {
		src.removeCreature(id)
	}
	base(c).pos = to
	dst.pushCreature(c)

	if i, f := dst.field(); f != nil {
		if f.StepIn(c) {
			dst.removeItemAt(i)
			slog.Debug("field removed", "item", f.ItemID(), "pos", to)
		}
	}
	return nil
}

// CanThrowObjectTo implements area.PathChecker. The path must stay on one
// floor, within throw range, and cross no tile that blocks projectiles.
// Both ends are excluded from the sight check.
func (m *Map) CanThrowObjectTo(from, to model.Position) bool {
	if !from.SameFloor(to) {
		return false
	}
	dx, dy := from.Delta(to)
	if abs32(dx) > ThrowRangeX || abs32(dy) > ThrowRangeY {
		return false
	}

	it := NewLineIterator(from.X, from.Y, to.X, to.Y)
	for it.Next() {
		pos := model.NewPosition(it.X(), it.Y(), from.Z)
		if pos == from || pos == to {
			continue
		}
		if tile, ok := m.tiles[pos]; ok && tile.Flags().Has(combat.TileBlockProjectile) {
			return false
		}
	}
	return true
}

// ChangeHealth implements combat.World. Damage is reduced by armor and
// defense when the combat is blockable; fully blocked or immune damage
// shows a block effect and reports false.
func (m *Map) ChangeHealth(damage combat.DamageType, caster, target combat.Creature, delta int32, blockedByShield, blockedByArmor bool) bool {
	cr := base(target)
	if cr == nil || cr.IsDead() {
		return false
	}

	if delta >= 0 {
		cr.health = min(cr.health+delta, cr.maxHealth)
		return true
	}

	if cr.IsImmune(damage) {
		m.MagicEffect(cr.pos, combat.EffectBlockHit)
		return false
	}

	amount := -delta
	if blockedByShield {
		amount -= cr.defense
	}
	if blockedByArmor {
		amount -= cr.armor
	}
	if amount <= 0 {
		m.MagicEffect(cr.pos, combat.EffectBlockHit)
		return false
	}

	cr.health = max(cr.health-amount, 0)
	slog.Debug("creature damaged",
		"target", cr.id,
		"caster", creatureID(caster),
		"type", damage,
		"amount", amount,
		"health", cr.health)

	if cr.IsDead() {
		m.kill(cr)
	}
	return true
}

// ChangeMana implements combat.World. Draining a creature without mana
// fails.
func (m *Map) ChangeMana(caster, target combat.Creature, delta int32) bool {
	cr := base(target)
	if cr == nil || cr.IsDead() {
		return false
	}

	if delta >= 0 {
		cr.mana = min(cr.mana+delta, cr.maxMana)
		return true
	}
	if cr.mana == 0 {
		return false
	}
	cr.mana = max(cr.mana+delta, 0)
	slog.Debug("creature drained", "target", cr.id, "caster", creatureID(caster), "mana", cr.mana)
	return true
}

// CombatValues implements combat.World.
func (m *Map) CombatValues(c combat.Creature) formula.Range {
	if cr := base(c); cr != nil {
		return cr.attack
	}
	return formula.Range{}
}

// RegisterItem makes id creatable as a plain ground item.
func (m *Map) RegisterItem(id uint16, name string) {
	m.items[id] = name
}

// RegisterField makes id creatable as a magic field. tmpl is cloned into
// every created field.
func (m *Map) RegisterField(id uint16, damageType combat.DamageType, blocking bool, tmpl combat.Condition) {
	m.fields[id] = fieldTemplate{damageType: damageType, blocking: blocking, condition: tmpl}
}

// CreateItem implements combat.World.
func (m *Map) CreateItem(id uint16) (combat.Item, error) {
	if f, ok := m.fields[id]; ok {
		return combat.NewMagicField(id, f.damageType, f.blocking, f.condition), nil
	}
	if _, ok := m.items[id]; ok {
		return &GroundItem{uid: m.ids.NextItemID(), id: id}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownItem, id)
}

// AddItem implements combat.World. A new field replaces the field already on
// the tile; a blocking field needs a tile without creatures.
func (m *Map) AddItem(tile combat.Tile, item combat.Item) combat.ReturnValue {
	t, ok := m.tiles[tile.Position()]
	if !ok {
		return combat.RetNotPossible
	}

	if f, ok := item.(*combat.MagicField); ok {
		if f.Blocking() && len(t.creatures) > 0 {
			return combat.RetNotEnoughRoom
		}
		if i, _ := t.field(); i >= 0 {
			t.removeItemAt(i)
		}
	}
	if len(t.items) >= MaxItemsPerTile {
		return combat.RetTileIsFull
	}

	t.items = append(t.items, item)
	return combat.RetNoError
}

// MagicEffect implements combat.World.
func (m *Map) MagicEffect(pos model.Position, effect combat.EffectID) {
	m.effects = append(m.effects, Effect{To: pos, Magic: effect, Shoot: combat.ShootNone})
}

// DistanceEffect implements combat.World.
func (m *Map) DistanceEffect(from, to model.Position, effect combat.ShootID) {
	m.effects = append(m.effects, Effect{Distance: true, From: from, To: to, Magic: combat.EffectNone, Shoot: effect})
}

// DrainEffects returns and clears the effects emitted so far.
func (m *Map) DrainEffects() []Effect {
	out := m.effects
	m.effects = nil
	return out
}

// Advance runs condition ticks for elapsed time. Owners that left the map
// are treated as absent casters.
func (m *Map) Advance(elapsed time.Duration) {
	for _, c := range m.creatures {
		cr := base(c)
		kept := cr.conditions[:0]
		for _, cond := range cr.conditions {
			for range cond.advance(elapsed) {
				if cond.damage == 0 || cr.IsDead() {
					continue
				}
				owner := m.creatures[cond.owner]
				m.ChangeHealth(cond.damageType, owner, c, cond.damage, false, false)
			}
			if !cond.expired() {
				kept = append(kept, cond)
			}
		}
		cr.conditions = kept
	}
}

func (m *Map) kill(cr *Creature) {
	cr.conditions = nil
	if tile, ok := m.tiles[cr.pos]; ok {
		tile.removeCreature(cr.id)
	}
	delete(m.creatures, cr.id)
	slog.Info("creature died", "id", cr.id, "name", cr.name, "pos", cr.pos)
}

func creatureID(c combat.Creature) uint32 {
	if c == nil {
		return 0
	}
	return c.ID()
}

var _ combat.World = (*Map)(nil)
