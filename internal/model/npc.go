package model

import "sync/atomic"

// Npc is a server controlled creature.
type Npc struct {
	*WorldObject

	spawn     Spawn
	flying    atomic.Bool
	intention atomic.Int32
}

// NewNpc creates an NPC standing at its spawn point.
func NewNpc(objectID uint32, spawn Spawn) *Npc {
	n := &Npc{
		WorldObject: NewWorldObject(objectID, spawn.Name, spawn.RegionID, spawn.Location),
		spawn:       spawn,
	}
	n.flying.Store(spawn.Flying)
	return n
}

// Spawn returns the spawn point the NPC belongs to.
func (n *Npc) Spawn() Spawn { return n.spawn }

// Speed returns movement speed in world units per second.
func (n *Npc) Speed() int32 { return n.spawn.Speed }

// IsFlying reports whether the NPC ignores ground pathing.
func (n *Npc) IsFlying() bool { return n.flying.Load() }

// SetFlying toggles flight.
func (n *Npc) SetFlying(flying bool) { n.flying.Store(flying) }

// Intention returns the current AI intention.
func (n *Npc) Intention() Intention { return Intention(n.intention.Load()) }

// SetIntention sets the current AI intention.
func (n *Npc) SetIntention(i Intention) { n.intention.Store(int32(i)) }
