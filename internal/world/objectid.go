package world

import "sync/atomic"

// ObjectIDGenerator generates unique ids for creatures and ground items.
//
// ID ranges (convention):
//
//	0x00000000 - 0x0FFFFFFF: Reserved (0 = no creature / no owner)
//	0x10000000 - 0x1FFFFFFF: Players
//	0x40000000 - 0x4FFFFFFF: Monsters
//	0x70000000 - 0x7FFFFFFF: Items on ground
type ObjectIDGenerator struct {
	nextPlayerID  atomic.Uint32
	nextMonsterID atomic.Uint32
	nextItemID    atomic.Uint32
}

// NewObjectIDGenerator creates a new ID generator.
func NewObjectIDGenerator() *ObjectIDGenerator {
	gen := &ObjectIDGenerator{}
	gen.nextPlayerID.Store(0x10000000)
	gen.nextMonsterID.Store(0x40000000)
	gen.nextItemID.Store(0x70000000)
	return gen
}

// NextPlayerID generates next unique player id.
func (g *ObjectIDGenerator) NextPlayerID() uint32 {
	return g.nextPlayerID.Add(1)
}

// NextMonsterID generates next unique monster id.
func (g *ObjectIDGenerator) NextMonsterID() uint32 {
	return g.nextMonsterID.Add(1)
}

// NextItemID generates next unique ground item id.
func (g *ObjectIDGenerator) NextItemID() uint32 {
	return g.nextItemID.Add(1)
}

// IsPlayerID reports whether id lies in the player range.
func IsPlayerID(id uint32) bool {
	return id >= 0x10000000 && id < 0x20000000
}
