package detour

// Status is the bitmask returned by every native query.
type Status uint32

// High level status bits.
const (
	Failure    Status = 1 << 31
	Success    Status = 1 << 30
	InProgress Status = 1 << 29
)

// Detail bits.
const (
	WrongMagic       Status = 1 << 0
	WrongVersion     Status = 1 << 1
	OutOfMemory      Status = 1 << 2
	InvalidParam     Status = 1 << 3
	BufferTooSmall   Status = 1 << 4
	OutOfNodes       Status = 1 << 5
	PartialResult    Status = 1 << 6
	AlreadyOccupied  Status = 1 << 7
	StatusDetailMask Status = 0x0ffffff
)

// Succeeded reports whether the success bit is set.
func (s Status) Succeeded() bool { return s&Success != 0 }

// Partial reports whether the query stopped short of the requested end.
func (s Status) Partial() bool { return s&PartialResult != 0 }

// PolyFlags are per-polygon attributes baked into the navmesh.
type PolyFlags uint16

const (
	PolyWalk     PolyFlags = 0x01
	PolySwim     PolyFlags = 0x02
	PolyDoor     PolyFlags = 0x04
	PolyJump     PolyFlags = 0x08
	PolyDisabled PolyFlags = 0x10
	PolyDoorAlb  PolyFlags = 0x20
	PolyDoorMid  PolyFlags = 0x40
	PolyDoorHib  PolyFlags = 0x80
	PolyAll      PolyFlags = 0xffff
)

// Filter selects polygons by flags. Layout matches the native
// two-element flags array {include, exclude}.
type Filter struct {
	Include PolyFlags
	Exclude PolyFlags
}

// DefaultFilter accepts every polygon that is not disabled.
func DefaultFilter() Filter {
	return Filter{Include: PolyAll ^ PolyDisabled}
}

// StraightPathOptions controls vertex placement in straight path queries.
type StraightPathOptions uint32

const (
	NoCrossings   StraightPathOptions = 0x00
	AreaCrossings StraightPathOptions = 0x01 // vertex where area changes
	AllCrossings  StraightPathOptions = 0x02 // vertex at every polygon edge crossing
)

// MaxPathPoints is the straight path output capacity.
const MaxPathPoints = 256

// MeshRef and QueryRef are opaque native pointers.
type (
	MeshRef  uintptr
	QueryRef uintptr
)

// Vec3 is a point in mesh space (Y-up).
type Vec3 [3]float32

// Library is the native navmesh API.
// A QueryRef must never be used by two goroutines at once.
type Library interface {
	LoadNavMesh(path string) (MeshRef, bool)
	FreeNavMesh(mesh MeshRef)
	CreateNavMeshQuery(mesh MeshRef) (QueryRef, bool)
	FreeNavMeshQuery(query QueryRef)

	// PathStraight writes up to len(points)/3 vertices into points and
	// returns the number written.
	PathStraight(query QueryRef, start, end, polyPickExt Vec3, filter Filter, options StraightPathOptions, points []float32, flags []PolyFlags) (int, Status)
	FindRandomPointAroundCircle(query QueryRef, center Vec3, radius float32, polyPickExt Vec3, filter Filter) (Vec3, Status)
	FindClosestPoint(query QueryRef, center, polyPickExt Vec3, filter Filter) (Vec3, Status)
}
