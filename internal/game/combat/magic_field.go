package combat

// MagicField is a field item (fire, poison, energy, magic wall) left on a
// tile by a combat. Non-blocking fields put their damage condition on every
// creature stepping in.
type MagicField struct {
	id         uint16
	damageType DamageType
	blocking   bool
	owner      uint32
	condition  Condition
}

// NewMagicField creates a field item. tmpl is cloned; nil means the field has
// no condition.
func NewMagicField(id uint16, damageType DamageType, blocking bool, tmpl Condition) *MagicField {
	f := &MagicField{id: id, damageType: damageType, blocking: blocking}
	if tmpl != nil {
		f.condition = tmpl.Clone()
	}
	return f
}

// ItemID implements Item.
func (f *MagicField) ItemID() uint16 { return f.id }

// SetOwner implements Item.
func (f *MagicField) SetOwner(id uint32) { f.owner = id }

// Owner returns the id of the creature that created the field, or 0.
func (f *MagicField) Owner() uint32 { return f.owner }

// DamageType returns the field's damage type.
func (f *MagicField) DamageType() DamageType { return f.damageType }

// Blocking reports whether the field blocks movement.
func (f *MagicField) Blocking() bool { return f.blocking }

// StepIn handles a creature entering the field's tile. It reports true when
// the field must be removed instead: a creature forced onto a blocking field
// destroys it.
func (f *MagicField) StepIn(c Creature) (remove bool) {
	if f.blocking {
		return true
	}
	if f.condition == nil {
		return false
	}

	cond := f.condition.Clone()
	if f.owner != 0 {
		cond.SetOwner(f.owner)
	}
	cond.AttachTo(c)
	return false
}
