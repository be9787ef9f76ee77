package zone

import "sync/atomic"

// Zone is a rectangular area of a region. Zones are the unit navmeshes
// are baked for.
type Zone struct {
	id       uint16
	name     string
	regionID uint16
	minX     int32
	minY     int32
	maxX     int32
	maxY     int32

	// pathingAllowed is the static flag from the zone table; zones with
	// it unset never get a navmesh loaded.
	pathingAllowed bool
	pathingEnabled atomic.Bool
}

// New creates a zone covering [minX, maxX) x [minY, maxY).
func New(id uint16, name string, regionID uint16, minX, minY, maxX, maxY int32, pathingAllowed bool) *Zone {
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	return &Zone{
		id:             id,
		name:           name,
		regionID:       regionID,
		minX:           minX,
		minY:           minY,
		maxX:           maxX,
		maxY:           maxY,
		pathingAllowed: pathingAllowed,
	}
}

// ID returns the zone identifier.
func (z *Zone) ID() uint16 { return z.id }

// Name returns the zone display name.
func (z *Zone) Name() string { return z.name }

// RegionID returns the region the zone belongs to.
func (z *Zone) RegionID() uint16 { return z.regionID }

// Bounds returns the zone rectangle.
func (z *Zone) Bounds() (minX, minY, maxX, maxY int32) {
	return z.minX, z.minY, z.maxX, z.maxY
}

// Contains checks if (x, y) lies inside the zone rectangle.
func (z *Zone) Contains(x, y int32) bool {
	return x >= z.minX && x < z.maxX && y >= z.minY && y < z.maxY
}

// PathingAllowed reports whether a navmesh may be loaded for this zone.
func (z *Zone) PathingAllowed() bool { return z.pathingAllowed }

// IsPathingEnabled reports whether a navmesh is currently loaded.
func (z *Zone) IsPathingEnabled() bool { return z.pathingEnabled.Load() }

// SetPathingEnabled is toggled by the navmesh registry on load and unload.
func (z *Zone) SetPathingEnabled(enabled bool) { z.pathingEnabled.Store(enabled) }
