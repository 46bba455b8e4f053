// Package combat resolves combat effects: it expands an optional area shape
// into tiles, filters tiles and creatures by the legality rules, applies the
// configured health, mana or condition effect, and triggers tile and
// projectile visuals.
//
// A Combat is configured once per ability and reused for every cast. It is
// not safe for concurrent use; all calls happen on the game tick goroutine.
package combat

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/udisondev/tilecombat/internal/game/area"
	"github.com/udisondev/tilecombat/internal/game/formula"
)

var (
	ErrUnknownFormula  = errors.New("unknown combat formula")
	ErrUnknownCallback = errors.New("unknown combat callback")
)

// Kind selects the per-creature effect.
type Kind uint8

const (
	KindNone Kind = iota
	KindHealth
	KindMana
	KindCondition
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindHealth:
		return "health"
	case KindMana:
		return "mana"
	case KindCondition:
		return "condition"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind parses a combat kind name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return KindNone, nil
	case "health", "hitpoints":
		return KindHealth, nil
	case "mana", "manapoints":
		return KindMana, nil
	case "condition":
		return KindCondition, nil
	default:
		return KindNone, fmt.Errorf("unknown combat kind %q", s)
	}
}

// Combat is one configured combat effect.
type Combat struct {
	kind    Kind
	world   World
	params  Params
	area    *area.Directory
	formula formula.Formula
}

// New creates a combat of the given kind operating on world.
func New(kind Kind, world World) *Combat {
	return &Combat{
		kind:   kind,
		world:  world,
		params: DefaultParams(),
	}
}

// Kind returns the effect kind.
func (c *Combat) Kind() Kind { return c.kind }

// Params returns a copy of the effect parameters. The copy carries its own
// clone of the condition template.
func (c *Combat) Params() Params {
	p := c.params
	if p.condition != nil {
		p.condition = p.condition.Clone()
	}
	return p
}

// Area returns the configured area, or nil for single-tile combat.
func (c *Combat) Area() *area.Directory { return c.area }

// SetParam sets one effect parameter by key.
func (c *Combat) SetParam(param Param, value uint32) bool {
	return c.params.Set(param, value)
}

// SetParams replaces all effect parameters except the condition template.
func (c *Combat) SetParams(p Params) {
	p.condition = c.params.condition
	c.params = p
}

// SetCondition stores a clone of tmpl as the condition template.
// A nil tmpl removes the template.
func (c *Combat) SetCondition(tmpl Condition) {
	if tmpl == nil {
		c.params.condition = nil
		return
	}
	c.params.condition = tmpl.Clone()
}

// SetArea stores a deep copy of a. A nil area makes the combat single-tile.
func (c *Combat) SetArea(a *area.Directory) {
	if a == nil {
		c.area = nil
		return
	}
	c.area = a.Clone()
}

// SetFormula configures the arithmetic formula. Only formula.KindLevelMagic
// has a closed form; other kinds leave the configuration untouched.
func (c *Combat) SetFormula(kind formula.Kind, minA, minB, maxA, maxB float64) error {
	if kind != formula.KindLevelMagic {
		slog.Warn("combat formula not set", "kind", kind, "reason", "no arithmetic form")
		return fmt.Errorf("%w: %s", ErrUnknownFormula, kind)
	}
	c.formula = formula.Arithmetic{MinA: minA, MinB: minB, MaxA: maxA, MaxB: maxB}
	return nil
}

// SetCallback delegates the magnitude to the named formula on host.
// An unknown kind leaves the configuration untouched.
func (c *Combat) SetCallback(kind formula.Kind, name string, host formula.Host) error {
	f, err := formula.NewScripted(kind, name, host)
	if err != nil {
		slog.Warn("combat callback not set", "kind", kind, "name", name, "error", err)
		return fmt.Errorf("%w: %w", ErrUnknownCallback, err)
	}
	c.formula = f
	return nil
}

// Formula returns the configured value formula, or nil.
func (c *Combat) Formula() formula.Formula { return c.formula }

// MinMax computes the magnitude range for caster. Players go through the
// value formula; other creatures use their intrinsic combat values. A
// failing formula is logged and yields the zero range.
func (c *Combat) MinMax(caster Creature) formula.Range {
	if caster == nil {
		return formula.Range{}
	}

	player, ok := caster.(Player)
	if !ok {
		return c.world.CombatValues(caster)
	}
	if c.formula == nil {
		return formula.Range{}
	}

	r, err := c.formula.MinMax(player)
	if err != nil {
		slog.Error("combat formula failed", "caster", caster.ID(), "kind", c.kind, "error", err)
		return formula.Range{}
	}
	return r
}
