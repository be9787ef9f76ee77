package pathing

import (
	"sync"
	"sync/atomic"
)

// Path following distances, in world units.
const (
	MinPathingDistance          = 80
	MinTargetDiffReplotDistance = 80
	NodeReachedDistance         = 24
)

// NoPathReason explains why CalculateNextTarget returned no waypoint.
type NoPathReason int32

const (
	NoProblem NoPathReason = iota
	Unknown
	RecastFoundNoPath
	DoorEnRoute // reserved for door-aware routing
)

func (r NoPathReason) String() string {
	switch r {
	case NoProblem:
		return "NOPROBLEM"
	case Unknown:
		return "UNKNOWN"
	case RecastFoundNoPath:
		return "RECAST_FOUND_NO_PATH"
	case DoorEnRoute:
		return "DOOR_EN_ROUTE"
	default:
		return "INVALID"
	}
}

// Owner is the entity a PathCalculator steers.
type Owner interface {
	Position() Point3D
	IsFlying() bool
	CurrentZone() Zone
	// ZoneAt resolves the zone containing p in the owner's region.
	ZoneAt(p Point3D) Zone
}

// Door is a door found on the upcoming path segment.
type Door struct {
	Position Point3D
}

const (
	replotIdle int32 = iota
	replotRunning
)

// PathCalculator follows a navmesh path toward a moving target.
//
// Paths are replotted only when the target moved at least
// MinTargetDiffReplotDistance since the last plot or when a replot is
// forced. Only one replot runs at a time; concurrent callers return
// immediately and retry on their next tick.
type PathCalculator struct {
	owner Owner
	mgr   Manager

	replot      atomic.Int32
	forceReplot atomic.Bool

	mu          sync.Mutex
	lastTarget  Point3D
	hasTarget   bool
	pathNodes   []Point3D
	didFindPath bool
}

// NewPathCalculator creates a calculator for owner using mgr for queries.
func NewPathCalculator(owner Owner, mgr Manager) *PathCalculator {
	return &PathCalculator{owner: owner, mgr: mgr}
}

// IsSupported reports whether owner stands in a zone with a navmesh.
func IsSupported(owner Owner, mgr Manager) bool {
	zone := owner.CurrentZone()
	return zone != nil && mgr.HasNavmesh(zone)
}

// ShouldPath reports whether moving to target needs a navmesh path rather
// than a direct walk.
func (c *PathCalculator) ShouldPath(target Point3D) bool {
	pos := c.owner.Position()
	if pos.DistanceSquared(target) < MinPathingDistance*MinPathingDistance {
		return false
	}
	if c.owner.IsFlying() {
		return false
	}
	if pos.Z <= 0 {
		return false
	}

	zone := c.owner.CurrentZone()
	if zone == nil || !c.mgr.HasNavmesh(zone) {
		return false
	}
	// cross-zone pathing is not supported
	return sameZone(c.owner.ZoneAt(target), zone)
}

// ReplotPath computes a new path to target. Returns false without
// blocking if another replot is already running.
func (c *PathCalculator) ReplotPath(target Point3D) bool {
	if !c.replot.CompareAndSwap(replotIdle, replotRunning) {
		return false
	}
	defer c.replot.Store(replotIdle)
	// Cleared before the query so a request made while it runs is kept.
	c.forceReplot.Store(false)

	path, res := c.mgr.GetPathStraight(c.owner.CurrentZone(), c.owner.Position(), target)

	var nodes []Point3D
	found := res.Found()
	if found {
		points := path.Points()
		// First node is the current position. The exact target is left to
		// the caller's approach logic unless the path stops short anyway.
		end := len(points) - 1
		if res == PartialPathFound {
			end = len(points)
		}
		if end > 1 {
			nodes = append(make([]Point3D, 0, end-1), points[1:end]...)
		}
	}

	c.mu.Lock()
	c.pathNodes = nodes
	c.didFindPath = found
	c.lastTarget = target
	c.hasTarget = true
	c.mu.Unlock()
	return true
}

// CalculateNextTarget returns the waypoint to steer toward on the way to
// target. ok is false when no waypoint applies; reason NoProblem then
// means the owner should walk to target directly.
func (c *PathCalculator) CalculateNextTarget(target Point3D) (next Point3D, ok bool, reason NoPathReason) {
	if !c.ShouldPath(target) {
		c.mu.Lock()
		c.didFindPath = true
		c.mu.Unlock()
		return Point3D{}, false, NoProblem
	}

	if c.needsReplot(target) {
		c.ReplotPath(target)
	}

	pos := c.owner.Position()

	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.pathNodes) > 0 && pos.WithinRadius(c.pathNodes[0], NodeReachedDistance) {
		c.pathNodes = c.pathNodes[1:]
	}

	if len(c.pathNodes) == 0 {
		if !c.didFindPath {
			return Point3D{}, false, RecastFoundNoPath
		}
		return Point3D{}, false, Unknown
	}
	return c.pathNodes[0], true, NoProblem
}

func (c *PathCalculator) needsReplot(target Point3D) bool {
	if c.forceReplot.Load() {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasTarget {
		return true
	}
	const d = int64(MinTargetDiffReplotDistance)
	return c.lastTarget.DistanceSquared(target) >= d*d
}

// Clear drops the cached path and target.
func (c *PathCalculator) Clear() {
	c.mu.Lock()
	c.pathNodes = nil
	c.lastTarget = Point3D{}
	c.hasTarget = false
	c.didFindPath = false
	c.mu.Unlock()
	c.forceReplot.Store(false)
}

// SetForceReplot makes the next CalculateNextTarget replot regardless of
// target movement, e.g. after a teleport.
func (c *PathCalculator) SetForceReplot(force bool) { c.forceReplot.Store(force) }

// ForceReplot reports whether a replot is pending.
func (c *PathCalculator) ForceReplot() bool { return c.forceReplot.Load() }

// DidFindPath reports whether the last replot found a path.
func (c *PathCalculator) DidFindPath() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.didFindPath
}

// PendingNodes returns a copy of the remaining waypoints.
func (c *PathCalculator) PendingNodes() []Point3D {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Point3D, len(c.pathNodes))
	copy(out, c.pathNodes)
	return out
}

// NextDoor is reserved for door-aware routing and is always nil.
func (c *PathCalculator) NextDoor() *Door { return nil }
