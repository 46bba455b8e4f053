package formula

import "fmt"

// Host runs named external formulas. Implementations return the bounds the
// formula produced, or an error when the call or its result is unusable.
type Host interface {
	Invoke(name string, casterID uint32, kind Kind, args ...int32) (min, max int32, err error)
}

// Scripted delegates the range computation to a Host.
type Scripted struct {
	name string
	kind Kind
	host Host
}

// NewScripted returns a delegated formula. Only KindLevelMagic and
// KindSkill can be delegated.
func NewScripted(kind Kind, name string, host Host) (*Scripted, error) {
	if host == nil {
		return nil, ErrNoHost
	}
	switch kind {
	case KindLevelMagic, KindSkill:
	default:
		return nil, fmt.Errorf("delegating formula %q: %w: %s", name, ErrUnknownKind, kind)
	}
	return &Scripted{name: name, kind: kind, host: host}, nil
}

// Name returns the registered formula name.
func (f *Scripted) Name() string { return f.name }

// Kind returns the attribute kind passed to the host.
func (f *Scripted) Kind() Kind { return f.kind }

// MinMax implements Formula. A host failure or a result with min > max is
// reported as ErrExternalCall and the zero Range is returned.
func (f *Scripted) MinMax(c Caster) (Range, error) {
	var args []int32
	switch f.kind {
	case KindLevelMagic:
		args = []int32{c.Level(), c.MagicLevel()}
	case KindSkill:
		args = []int32{c.SkillLevel()}
	}

	lo, hi, err := f.host.Invoke(f.name, c.ID(), f.kind, args...)
	if err != nil {
		return Range{}, fmt.Errorf("formula %q for caster %d: %w: %w", f.name, c.ID(), ErrExternalCall, err)
	}
	if lo > hi {
		return Range{}, fmt.Errorf("formula %q for caster %d returned min %d > max %d: %w",
			f.name, c.ID(), lo, hi, ErrExternalCall)
	}

	return Range{Min: lo, Max: hi}, nil
}
