package combat

import (
	"fmt"
	"math"
	"strings"
)

// DamageType classifies health changes for resistances and messages.
type DamageType uint8

const (
	DamageNone DamageType = iota
	DamagePhysical
	DamagePoison
	DamageFire
	DamageEnergy
	DamageLifeDrain
	DamageManaDrain
)

var damageTypeNames = map[DamageType]string{
	DamageNone:      "none",
	DamagePhysical:  "physical",
	DamagePoison:    "poison",
	DamageFire:      "fire",
	DamageEnergy:    "energy",
	DamageLifeDrain: "lifedrain",
	DamageManaDrain: "manadrain",
}

func (d DamageType) String() string {
	if name, ok := damageTypeNames[d]; ok {
		return name
	}
	return fmt.Sprintf("damage(%d)", uint8(d))
}

// ParseDamageType parses a damage type name.
func ParseDamageType(s string) (DamageType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DamageNone, nil
	}
	for d, name := range damageTypeNames {
		if name == s {
			return d, nil
		}
	}
	return DamageNone, fmt.Errorf("unknown damage type %q", s)
}

// EffectID is a magic effect shown on a tile.
type EffectID uint8

const (
	EffectDrawBlood   EffectID = 0
	EffectLoseEnergy  EffectID = 1
	EffectPuff        EffectID = 2
	EffectBlockHit    EffectID = 3
	EffectExplosion   EffectID = 4
	EffectFireArea    EffectID = 6
	EffectBlueShimmer EffectID = 11
	EffectEnergyArea  EffectID = 12
	EffectPoisonArea  EffectID = 20
	EffectNone        EffectID = 0xFF
)

// ShootID is a projectile effect travelling between two positions.
type ShootID uint8

const (
	ShootSpear       ShootID = 0
	ShootBolt        ShootID = 1
	ShootArrow       ShootID = 2
	ShootFire        ShootID = 3
	ShootEnergy      ShootID = 4
	ShootPoisonArrow ShootID = 5
	ShootNone        ShootID = 0xFF
)

// Param keys the scripting-facing parameter setter.
type Param uint8

const (
	ParamDamageType Param = iota + 1
	ParamEffect
	ParamDistanceEffect
	ParamBlockedByShield
	ParamBlockedByArmor
	ParamTargetCasterOrTopMost
	ParamCreateItem
	ParamAggressive
)

// Params describes what a combat does besides its magnitude.
type Params struct {
	DamageType            DamageType
	ImpactEffect          EffectID
	DistanceEffect        ShootID
	BlockedByArmor        bool
	BlockedByShield       bool
	TargetCasterOrTopMost bool
	Aggressive            bool
	// ItemID is created on every affected tile; 0 disables it.
	ItemID uint16

	condition Condition
}

// DefaultParams returns aggressive params without visuals or items.
func DefaultParams() Params {
	return Params{
		DamageType:     DamageNone,
		ImpactEffect:   EffectNone,
		DistanceEffect: ShootNone,
		Aggressive:     true,
	}
}

// Set assigns a parameter by key. It reports false and leaves p unchanged
// for unknown keys and for values that do not fit the parameter.
func (p *Params) Set(param Param, value uint32) bool {
	switch param {
	case ParamDamageType, ParamEffect, ParamDistanceEffect:
		if value > math.MaxUint8 {
			return false
		}
	case ParamCreateItem:
		if value > math.MaxUint16 {
			return false
		}
	}

	switch param {
	case ParamDamageType:
		p.DamageType = DamageType(value)
	case ParamEffect:
		p.ImpactEffect = EffectID(value)
	case ParamDistanceEffect:
		p.DistanceEffect = ShootID(value)
	case ParamBlockedByArmor:
		p.BlockedByArmor = value != 0
	case ParamBlockedByShield:
		p.BlockedByShield = value != 0
	case ParamTargetCasterOrTopMost:
		p.TargetCasterOrTopMost = value != 0
	case ParamCreateItem:
		p.ItemID = uint16(value)
	case ParamAggressive:
		p.Aggressive = value != 0
	default:
		return false
	}
	return true
}

// Condition returns the owned condition template, or nil.
func (p Params) Condition() Condition {
	return p.condition
}
