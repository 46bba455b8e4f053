package world

import (
	"github.com/udisondev/tilecombat/internal/game/combat"
)

// GroundItem is a plain item created by a combat.
type GroundItem struct {
	uid   uint32
	id    uint16
	owner uint32
}

func (i *GroundItem) UID() uint32        { return i.uid }
func (i *GroundItem) ItemID() uint16     { return i.id }
func (i *GroundItem) Owner() uint32      { return i.owner }
func (i *GroundItem) SetOwner(id uint32) { i.owner = id }

type fieldTemplate struct {
	damageType combat.DamageType
	blocking   bool
	condition  combat.Condition
}

var _ combat.Item = (*GroundItem)(nil)
