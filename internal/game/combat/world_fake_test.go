package combat

import (
	"github.com/udisondev/tilecombat/internal/game/formula"
	"github.com/udisondev/tilecombat/internal/model"
)

type testCreature struct {
	id  uint32
	pos model.Position
}

func (c *testCreature) ID() uint32               { return c.id }
func (c *testCreature) Position() model.Position { return c.pos }

type testPlayer struct {
	testCreature
	level      int32
	magicLevel int32
	skillLevel int32
	access     int32
}

func (p *testPlayer) Level() int32       { return p.level }
func (p *testPlayer) MagicLevel() int32  { return p.magicLevel }
func (p *testPlayer) SkillLevel() int32  { return p.skillLevel }
func (p *testPlayer) AccessLevel() int32 { return p.access }

func newCreature(id uint32, pos model.Position) *testCreature {
	return &testCreature{id: id, pos: pos}
}

func newPlayer(id uint32, pos model.Position, level int32) *testPlayer {
	return &testPlayer{testCreature: testCreature{id: id, pos: pos}, level: level}
}

type testTile struct {
	pos       model.Position
	flags     TileFlags
	creatures []Creature
}

func (t *testTile) Position() model.Position { return t.pos }
func (t *testTile) Flags() TileFlags         { return t.flags }
func (t *testTile) Creatures() []Creature    { return t.creatures }

func (t *testTile) TopCreature() Creature {
	if len(t.creatures) == 0 {
		return nil
	}
	return t.creatures[0]
}

type testItem struct {
	id    uint16
	owner uint32
}

func (i *testItem) ItemID() uint16     { return i.id }
func (i *testItem) SetOwner(id uint32) { i.owner = id }

type attachment struct {
	target uint32
	owner  uint32
	cond   *testCondition
}

// testCondition records every attachment of itself and its clones.
type testCondition struct {
	name        string
	owner       uint32
	reject      bool
	clones      *int
	attachments *[]attachment
}

func newTestCondition(name string) *testCondition {
	return &testCondition{name: name, clones: new(int), attachments: &[]attachment{}}
}

func (c *testCondition) Clone() Condition {
	*c.clones++
	cp := *c
	return &cp
}

func (c *testCondition) SetOwner(id uint32) { c.owner = id }

func (c *testCondition) AttachTo(target Creature) bool {
	*c.attachments = append(*c.attachments, attachment{target: target.ID(), owner: c.owner, cond: c})
	return !c.reject
}

type healthCall struct {
	damage DamageType
	caster uint32
	target uint32
	delta  int32
	shield bool
	armor  bool
}

type manaCall struct {
	caster uint32
	target uint32
	delta  int32
}

type magicCall struct {
	pos    model.Position
	effect EffectID
}

type distanceCall struct {
	from   model.Position
	to     model.Position
	effect ShootID
}

// testWorld is an in-memory World that records every call.
type testWorld struct {
	tiles        map[model.Position]*testTile
	blockedPaths map[model.Position]bool
	combatValues map[uint32]formula.Range
	failHealth   map[uint32]bool
	failMana     map[uint32]bool

	createErr  error
	addItemRet ReturnValue

	health   []healthCall
	mana     []manaCall
	created  []*testItem
	placed   []*testItem
	magic    []magicCall
	distance []distanceCall
}

func newTestWorld() *testWorld {
	return &testWorld{
		tiles:        make(map[model.Position]*testTile),
		blockedPaths: make(map[model.Position]bool),
		combatValues: make(map[uint32]formula.Range),
		failHealth:   make(map[uint32]bool),
		failMana:     make(map[uint32]bool),
	}
}

// addTile adds a tile with ground plus extra flags; creatures are listed
// topmost first.
func (w *testWorld) addTile(pos model.Position, extra TileFlags, creatures ...Creature) *testTile {
	t := &testTile{pos: pos, flags: TileGround | extra, creatures: creatures}
	w.tiles[pos] = t
	return t
}

// addFloor adds plain ground tiles for the square [x0..x1] x [y0..y1].
func (w *testWorld) addFloor(x0, y0, x1, y1, z int32) {
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			w.addTile(model.NewPosition(x, y, z), 0)
		}
	}
}

func (w *testWorld) Tile(pos model.Position) (Tile, bool) {
	t, ok := w.tiles[pos]
	if !ok {
		return nil, false
	}
	return t, true
}

func (w *testWorld) CanThrowObjectTo(_, to model.Position) bool {
	return !w.blockedPaths[to]
}

func (w *testWorld) ChangeHealth(damage DamageType, caster, target Creature, delta int32, shield, armor bool) bool {
	w.health = append(w.health, healthCall{
		damage: damage,
		caster: creatureID(caster),
		target: target.ID(),
		delta:  delta,
		shield: shield,
		armor:  armor,
	})
	return !w.failHealth[target.ID()]
}

func (w *testWorld) ChangeMana(caster, target Creature, delta int32) bool {
	w.mana = append(w.mana, manaCall{caster: creatureID(caster), target: target.ID(), delta: delta})
	return !w.failMana[target.ID()]
}

func (w *testWorld) CombatValues(c Creature) formula.Range {
	return w.combatValues[c.ID()]
}

func (w *testWorld) CreateItem(id uint16) (Item, error) {
	if w.createErr != nil {
		return nil, w.createErr
	}
	item := &testItem{id: id}
	w.created = append(w.created, item)
	return item, nil
}

func (w *testWorld) AddItem(_ Tile, item Item) ReturnValue {
	if w.addItemRet != RetNoError {
		return w.addItemRet
	}
	w.placed = append(w.placed, item.(*testItem))
	return RetNoError
}

func (w *testWorld) MagicEffect(pos model.Position, effect EffectID) {
	w.magic = append(w.magic, magicCall{pos: pos, effect: effect})
}

func (w *testWorld) DistanceEffect(from, to model.Position, effect ShootID) {
	w.distance = append(w.distance, distanceCall{from: from, to: to, effect: effect})
}

func (w *testWorld) healthTargets() []uint32 {
	out := make([]uint32, 0, len(w.health))
	for _, h := range w.health {
		out = append(out, h.target)
	}
	return out
}
