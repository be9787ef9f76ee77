package zone

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/udisondev/dolgo/internal/game/pathing"
)

const gridSize int32 = 8192 // world units per grid cell

type gridKey struct {
	region uint16
	gx, gy int32
}

// Manager indexes zones for point lookups.
// Not safe for concurrent Init; lookups after Init are read-only.
type Manager struct {
	zones []*Zone
	byID  map[uint16]*Zone
	grid  map[gridKey][]*Zone
}

// NewManager creates a new empty zone manager.
func NewManager() *Manager {
	return &Manager{
		byID: make(map[uint16]*Zone),
		grid: make(map[gridKey][]*Zone),
	}
}

// Init registers zones and builds the spatial grid.
func (m *Manager) Init(zones []*Zone) error {
	for _, z := range zones {
		if _, exists := m.byID[z.ID()]; exists {
			return fmt.Errorf("init zone manager: duplicate zone id %d", z.ID())
		}
		m.zones = append(m.zones, z)
		m.byID[z.ID()] = z
	}

	sort.Slice(m.zones, func(i, j int) bool { return m.zones[i].ID() < m.zones[j].ID() })
	m.buildGrid()

	slog.Info("zone manager initialized",
		"zones", len(m.zones),
		"grid_cells", len(m.grid))
	return nil
}

// ZoneAt returns the zone of region containing (x, y), or nil.
func (m *Manager) ZoneAt(regionID uint16, x, y int32) *Zone {
	key := gridKey{region: regionID, gx: floorDiv(x, gridSize), gy: floorDiv(y, gridSize)}
	for _, z := range m.grid[key] {
		if z.Contains(x, y) {
			return z
		}
	}
	return nil
}

// ZoneByID returns a zone by its identifier, or nil if not found.
func (m *Manager) ZoneByID(id uint16) *Zone {
	return m.byID[id]
}

// Zones returns all zones ordered by ID.
func (m *Manager) Zones() []*Zone {
	out := make([]*Zone, len(m.zones))
	copy(out, m.zones)
	return out
}

// PathingZones returns the zones a navmesh may be loaded for.
func (m *Manager) PathingZones() []pathing.Zone {
	out := make([]pathing.Zone, 0, len(m.zones))
	for _, z := range m.zones {
		if z.PathingAllowed() {
			out = append(out, z)
		}
	}
	return out
}

// buildGrid registers every zone in all grid cells its rectangle touches.
func (m *Manager) buildGrid() {
	for _, z := range m.zones {
		gxMin := floorDiv(z.minX, gridSize)
		gxMax := floorDiv(z.maxX-1, gridSize)
		gyMin := floorDiv(z.minY, gridSize)
		gyMax := floorDiv(z.maxY-1, gridSize)

		for gx := gxMin; gx <= gxMax; gx++ {
			for gy := gyMin; gy <= gyMax; gy++ {
				key := gridKey{region: z.regionID, gx: gx, gy: gy}
				m.grid[key] = append(m.grid[key], z)
			}
		}
	}
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int32) int32 {
	d := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		d--
	}
	return d
}
