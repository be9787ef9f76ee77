package model

// Spawn is a spawn point of a roaming NPC.
type Spawn struct {
	SpawnID   int64
	Name      string
	RegionID  uint16
	Location  Location
	RoamRange int32 // 0 = stationary
	Flying    bool
	Speed     int32 // world units per second
}
