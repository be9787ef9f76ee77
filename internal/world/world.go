package world

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/udisondev/dolgo/internal/model"
)

// World tracks the NPCs living in the game world.
type World struct {
	npcs     sync.Map // objectID → *model.Npc
	npcCount atomic.Int32
}

// New creates an empty world.
func New() *World {
	return &World{}
}

// AddNpc registers npc. Returns error if its object ID is taken.
func (w *World) AddNpc(npc *model.Npc) error {
	if _, loaded := w.npcs.LoadOrStore(npc.ObjectID(), npc); loaded {
		return fmt.Errorf("adding npc %q: object id %d already in world", npc.Name(), npc.ObjectID())
	}
	w.npcCount.Add(1)
	return nil
}

// RemoveNpc removes the NPC with objectID, if present.
func (w *World) RemoveNpc(objectID uint32) {
	if _, ok := w.npcs.LoadAndDelete(objectID); ok {
		w.npcCount.Add(-1)
	}
}

// GetNpc returns NPC by object ID.
func (w *World) GetNpc(objectID uint32) (*model.Npc, bool) {
	v, ok := w.npcs.Load(objectID)
	if !ok {
		return nil, false
	}
	return v.(*model.Npc), true
}

// NpcCount returns number of NPCs in the world.
func (w *World) NpcCount() int {
	return int(w.npcCount.Load())
}

// ForEachNpc calls fn for each NPC until fn returns false.
func (w *World) ForEachNpc(fn func(*model.Npc) bool) {
	w.npcs.Range(func(_, v any) bool {
		return fn(v.(*model.Npc))
	})
}

// NpcsInRegion returns the NPCs currently in regionID.
func (w *World) NpcsInRegion(regionID uint16) []*model.Npc {
	var out []*model.Npc
	w.ForEachNpc(func(npc *model.Npc) bool {
		if npc.RegionID() == regionID {
			out = append(out, npc)
		}
		return true
	})
	return out
}
