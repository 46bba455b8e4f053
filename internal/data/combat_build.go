package data

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/tilecombat/internal/game/combat"
	"github.com/udisondev/tilecombat/internal/game/formula"
)

// ConditionFactory turns a condition description into a template.
type ConditionFactory func(def ConditionDef, damage combat.DamageType) (combat.Condition, error)

// Builder builds ready combats from definitions.
type Builder struct {
	World      combat.World
	Host       formula.Host // required only by definitions with a callback
	Conditions ConditionFactory
}

// Build creates the combat described by def.
func (b Builder) Build(def *Definition) (*combat.Combat, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	kind, _ := combat.ParseKind(def.Kind)
	c := combat.New(kind, b.World)
	c.SetParams(def.Params.params())

	if def.Area != nil {
		d, err := def.Area.directory()
		if err != nil {
			return nil, fmt.Errorf("building %q area: %w", def.Name, err)
		}
		c.SetArea(d)
	}

	switch {
	case def.Formula != nil:
		fk, _ := formula.ParseKind(def.Formula.Kind)
		f := def.Formula
		if err := c.SetFormula(fk, f.MinA, f.MinB, f.MaxA, f.MaxB); err != nil {
			return nil, fmt.Errorf("building %q: %w", def.Name, err)
		}
	case def.Callback != nil:
		fk, _ := formula.ParseKind(def.Callback.Kind)
		if err := c.SetCallback(fk, def.Callback.Name, b.Host); err != nil {
			return nil, fmt.Errorf("building %q: %w", def.Name, err)
		}
	}

	if def.Condition != nil {
		if b.Conditions == nil {
			return nil, fmt.Errorf("building %q: no condition factory", def.Name)
		}
		cond, err := b.Conditions(*def.Condition, c.Params().DamageType)
		if err != nil {
			return nil, fmt.Errorf("building %q condition: %w", def.Name, err)
		}
		c.SetCondition(cond)
	}

	return c, nil
}

// BuildAll builds every definition in cat, keyed by name.
func (b Builder) BuildAll(cat *Catalog) (map[string]*combat.Combat, error) {
	out := make(map[string]*combat.Combat, cat.Len())
	for _, name := range cat.Names() {
		def, _ := cat.Get(name)
		c, err := b.Build(def)
		if err != nil {
			return nil, err
		}
		out[name] = c
	}
	slog.Debug("built combats", "count", len(out))
	return out, nil
}

func (p ParamsDef) params() combat.Params {
	out := combat.DefaultParams()
	out.DamageType, _ = combat.ParseDamageType(p.DamageType)
	if p.Effect != nil {
		out.ImpactEffect = combat.EffectID(*p.Effect)
	}
	if p.DistanceEffect != nil {
		out.DistanceEffect = combat.ShootID(*p.DistanceEffect)
	}
	out.BlockedByArmor = p.BlockedByArmor
	out.BlockedByShield = p.BlockedByShield
	out.TargetCasterOrTopMost = p.TargetCasterOrTopMost
	if p.Aggressive != nil {
		out.Aggressive = *p.Aggressive
	}
	out.ItemID = p.CreateItem
	return out
}
