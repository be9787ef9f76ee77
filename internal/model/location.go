package model

// Location is a position in the game world.
// Value type, passed by value (immutable).
type Location struct {
	X       int32
	Y       int32
	Z       int32
	Heading uint16 // 0-4095
}

// NewLocation creates a Location with the given coordinates.
func NewLocation(x, y, z int32, heading uint16) Location {
	return Location{X: x, Y: y, Z: z, Heading: heading}
}

// WithHeading returns a copy with the heading replaced.
func (l Location) WithHeading(heading uint16) Location {
	l.Heading = heading
	return l
}

// WithCoordinates returns a copy with the coordinates replaced.
func (l Location) WithCoordinates(x, y, z int32) Location {
	l.X = x
	l.Y = y
	l.Z = z
	return l
}

// DistanceSquared returns the squared distance to other (no sqrt on the hot path).
func (l Location) DistanceSquared(other Location) int64 {
	dx := int64(l.X) - int64(other.X)
	dy := int64(l.Y) - int64(other.Y)
	dz := int64(l.Z) - int64(other.Z)
	return dx*dx + dy*dy + dz*dz
}
