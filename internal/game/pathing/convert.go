package pathing

import (
	"math"

	"github.com/udisondev/dolgo/internal/game/pathing/detour"
)

// Mesh space is 1/32 of world space. The mesh is Y-up, the world is Z-up,
// so world (x, y, z) maps to mesh (x, z, y).
const (
	ConversionFactor float32 = 1.0 / 32
	InverseFactor    float32 = 1 / ConversionFactor

	// VerticalOffset lifts query points above the walkable surface.
	VerticalOffset = 8
)

// Bounds for waypoints accepted from the native layer.
const (
	MinWorldCoordinate = -500_000
	MaxWorldCoordinate = 10_000_000
)

// ToMesh converts a world coordinate to mesh space with the vertical offset applied.
func ToMesh(p Point3D) detour.Vec3 {
	return detour.Vec3{
		float32(p.X) * ConversionFactor,
		float32(p.Z+VerticalOffset) * ConversionFactor,
		float32(p.Y) * ConversionFactor,
	}
}

// VectorToMesh converts a world vector to mesh space without offset.
func VectorToMesh(v Vector3) detour.Vec3 {
	return detour.Vec3{
		v.X * ConversionFactor,
		v.Z * ConversionFactor,
		v.Y * ConversionFactor,
	}
}

// VectorFromMesh converts a mesh space point back to world space.
func VectorFromMesh(m detour.Vec3) Vector3 {
	return Vector3{
		X: m[0] * InverseFactor,
		Y: m[2] * InverseFactor,
		Z: m[1] * InverseFactor,
	}
}

// PointFromMesh converts a mesh space point to the nearest world coordinate.
func PointFromMesh(m detour.Vec3) Point3D {
	return VectorFromMesh(m).Point()
}

// validWaypoint reports whether a converted native vertex is usable.
func validWaypoint(v Vector3) bool {
	for _, c := range [3]float32{v.X, v.Y, v.Z} {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return v.X >= MinWorldCoordinate && v.X <= MaxWorldCoordinate &&
		v.Y >= MinWorldCoordinate && v.Y <= MaxWorldCoordinate
}
