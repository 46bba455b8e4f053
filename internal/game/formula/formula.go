// Package formula computes the [min, max] magnitude range of numeric combat
// effects from caster attributes, either with a fixed arithmetic formula or
// by delegating to an external scripted formula.
package formula

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownKind  = errors.New("unknown formula kind")
	ErrExternalCall = errors.New("external formula call failed")
	ErrNoHost       = errors.New("no formula host")
)

// Kind tags which caster attributes a formula consumes.
type Kind uint8

const (
	KindNone Kind = iota
	KindLevelMagic
	KindSkill
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindLevelMagic:
		return "levelmagic"
	case KindSkill:
		return "skill"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind parses a kind name as written in definition files.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return KindNone, nil
	case "levelmagic", "level_magic":
		return KindLevelMagic, nil
	case "skill":
		return KindSkill, nil
	default:
		return KindNone, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Caster is an attribute-bearing actor a formula can be evaluated for.
type Caster interface {
	ID() uint32
	Level() int32
	MagicLevel() int32
	SkillLevel() int32
}

// Range is an inclusive magnitude range.
type Range struct {
	Min int32
	Max int32
}

// Ordered returns r with Min <= Max.
func (r Range) Ordered() Range {
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	return r
}

// Formula computes a magnitude range for a caster.
type Formula interface {
	MinMax(c Caster) (Range, error)
}

// Arithmetic is the closed-form level/magic formula.
//
// The coefficient pairs cross over: MinA/MinB produce the upper bound and
// MaxA/MaxB the lower bound. Existing ability data is tuned against this.
type Arithmetic struct {
	MinA float64
	MinB float64
	MaxA float64
	MaxB float64
}

// MinMax implements Formula.
func (f Arithmetic) MinMax(c Caster) (Range, error) {
	raw := float64(c.Level()*2 + c.MagicLevel()*3)
	return Range{
		Min: int32(raw*f.MaxA + f.MaxB),
		Max: int32(raw*f.MinA + f.MinB),
	}, nil
}
