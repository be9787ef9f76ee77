package pathing

import "math"

// Zone is the part of a game zone the pathing layer needs.
type Zone interface {
	ID() uint16
	IsPathingEnabled() bool
	SetPathingEnabled(enabled bool)
}

// sameZone compares zones by ID; nil zones never match.
func sameZone(a, b Zone) bool {
	if a == nil || b == nil {
		return false
	}
	return a.ID() == b.ID()
}

// Point3D is an integer world coordinate (Z-up).
type Point3D struct {
	X, Y, Z int32
}

// DistanceSquared returns the squared distance to other.
func (p Point3D) DistanceSquared(other Point3D) int64 {
	dx := int64(p.X) - int64(other.X)
	dy := int64(p.Y) - int64(other.Y)
	dz := int64(p.Z) - int64(other.Z)
	return dx*dx + dy*dy + dz*dz
}

// Distance returns the euclidean distance to other. Computed in float64
// so it does not overflow for coordinates far apart.
func (p Point3D) Distance(other Point3D) float64 {
	dx := float64(p.X) - float64(other.X)
	dy := float64(p.Y) - float64(other.Y)
	dz := float64(p.Z) - float64(other.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// WithinRadius reports whether other is within radius of p.
func (p Point3D) WithinRadius(other Point3D, radius int32) bool {
	r := int64(radius)
	return p.DistanceSquared(other) <= r*r
}

// Vector converts p to a float vector.
func (p Point3D) Vector() Vector3 {
	return Vector3{X: float32(p.X), Y: float32(p.Y), Z: float32(p.Z)}
}

// Vector3 is a float world coordinate (Z-up).
type Vector3 struct {
	X, Y, Z float32
}

// Point rounds v to the nearest integer coordinate.
func (v Vector3) Point() Point3D {
	return Point3D{
		X: int32(math.Round(float64(v.X))),
		Y: int32(math.Round(float64(v.Y))),
		Z: int32(math.Round(float64(v.Z))),
	}
}

// LinePath is an immutable sequence of waypoints from start to destination.
type LinePath struct {
	points []Point3D
}

// NewLinePath copies points into a new path.
func NewLinePath(points ...Point3D) LinePath {
	if len(points) == 0 {
		return LinePath{}
	}
	cp := make([]Point3D, len(points))
	copy(cp, points)
	return LinePath{points: cp}
}

// Len returns the number of waypoints.
func (p LinePath) Len() int { return len(p.points) }

// At returns waypoint i.
func (p LinePath) At(i int) Point3D { return p.points[i] }

// Points returns a copy of all waypoints.
func (p LinePath) Points() []Point3D {
	cp := make([]Point3D, len(p.points))
	copy(cp, p.points)
	return cp
}

// PathingError is the outcome of a straight path query.
type PathingError int32

const (
	PathFound PathingError = iota
	PartialPathFound
	NoPathFound
	NavmeshUnavailable
)

// Found reports whether the query produced waypoints.
func (e PathingError) Found() bool {
	return e == PathFound || e == PartialPathFound
}

func (e PathingError) String() string {
	switch e {
	case PathFound:
		return "PathFound"
	case PartialPathFound:
		return "PartialPathFound"
	case NoPathFound:
		return "NoPathFound"
	case NavmeshUnavailable:
		return "NavmeshUnavailable"
	default:
		return "Unknown"
	}
}
