package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNpc(t *testing.T) {
	spawn := Spawn{
		SpawnID:   7,
		Name:      "forest wolf",
		RegionID:  1,
		Location:  NewLocation(31000, 42000, 2100, 1024),
		RoamRange: 500,
		Flying:    true,
		Speed:     191,
	}
	npc := NewNpc(1001, spawn)

	assert.Equal(t, uint32(1001), npc.ObjectID())
	assert.Equal(t, "forest wolf", npc.Name())
	assert.Equal(t, uint16(1), npc.RegionID())
	assert.Equal(t, spawn.Location, npc.Location())
	assert.Equal(t, int32(191), npc.Speed())
	assert.True(t, npc.IsFlying())
	assert.Equal(t, IntentionIdle, npc.Intention())

	npc.SetIntention(IntentionRoam)
	assert.Equal(t, IntentionRoam, npc.Intention())
	assert.Equal(t, "ROAM", npc.Intention().String())
}

func TestWorldObjectTeleport(t *testing.T) {
	w := NewWorldObject(1, "guard", 1, NewLocation(10, 20, 30, 0))
	w.SetLocation(w.Location().WithCoordinates(11, 21, 31))
	assert.Equal(t, NewLocation(11, 21, 31, 0), w.Location())

	w.Teleport(51, NewLocation(5, 6, 7, 8))
	assert.Equal(t, uint16(51), w.RegionID())
	assert.Equal(t, NewLocation(5, 6, 7, 8), w.Location())
}

func TestLocationHelpers(t *testing.T) {
	l := NewLocation(0, 0, 0, 0)
	assert.Equal(t, int64(25), l.DistanceSquared(NewLocation(3, 4, 0, 0)))
	assert.Equal(t, uint16(99), l.WithHeading(99).Heading)
}

func TestLocationDistanceFarApart(t *testing.T) {
	a := NewLocation(2_000_000_000, 0, 0, 0)
	b := NewLocation(-1_000_000_000, 0, 0, 0)
	assert.Equal(t, int64(9_000_000_000_000_000_000), a.DistanceSquared(b))
}
