// Package pathing answers navmesh queries for zones that have a baked
// navigation mesh and steers entities along the resulting paths.
package pathing

// DefaultClosestPointRange is the default search box half size for
// GetClosestPoint, in world units.
const DefaultClosestPointRange = 256

// Manager is a pathing backend.
type Manager interface {
	// GetPathStraight returns the straight path from start to destination.
	GetPathStraight(zone Zone, start, destination Point3D) (LinePath, PathingError)

	// GetRandomPoint returns a random navigable point within radius of center.
	GetRandomPoint(zone Zone, center Point3D, radius float32) (Vector3, bool)

	// GetClosestPoint returns the navigable point nearest to position inside
	// the search box. Without a mesh position is returned as is.
	GetClosestPoint(zone Zone, position Vector3, xRange, yRange, zRange float32) (Vector3, bool)

	HasNavmesh(zone Zone) bool
	IsAvailable() bool
}

// NullManager is the backend used when native pathing is unavailable.
// Every query reports that no mesh exists.
type NullManager struct{}

var _ Manager = NullManager{}

func (NullManager) GetPathStraight(Zone, Point3D, Point3D) (LinePath, PathingError) {
	return LinePath{}, NavmeshUnavailable
}

func (NullManager) GetRandomPoint(Zone, Point3D, float32) (Vector3, bool) {
	return Vector3{}, false
}

func (NullManager) GetClosestPoint(_ Zone, position Vector3, _, _, _ float32) (Vector3, bool) {
	return position, true
}

func (NullManager) HasNavmesh(Zone) bool { return false }

func (NullManager) IsAvailable() bool { return false }
