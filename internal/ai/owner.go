package ai

import (
	"github.com/udisondev/dolgo/internal/game/pathing"
	"github.com/udisondev/dolgo/internal/game/zone"
	"github.com/udisondev/dolgo/internal/model"
)

// ZoneLocator resolves the zone under a world position.
type ZoneLocator interface {
	ZoneAt(regionID uint16, x, y int32) *zone.Zone
}

// npcOwner exposes an NPC to the path calculator.
type npcOwner struct {
	npc   *model.Npc
	zones ZoneLocator
}

var _ pathing.Owner = (*npcOwner)(nil)

func (o *npcOwner) Position() pathing.Point3D {
	return toPoint(o.npc.Location())
}

func (o *npcOwner) IsFlying() bool { return o.npc.IsFlying() }

func (o *npcOwner) CurrentZone() pathing.Zone {
	return o.ZoneAt(o.Position())
}

func (o *npcOwner) ZoneAt(p pathing.Point3D) pathing.Zone {
	z := o.zones.ZoneAt(o.npc.RegionID(), p.X, p.Y)
	if z == nil {
		// a nil *zone.Zone would be a non-nil interface
		return nil
	}
	return z
}

func toPoint(loc model.Location) pathing.Point3D {
	return pathing.Point3D{X: loc.X, Y: loc.Y, Z: loc.Z}
}
