package model

import "sync"

// WorldObject is the base of every object placed in a region.
type WorldObject struct {
	objectID uint32
	name     string
	regionID uint16
	location Location

	mu sync.RWMutex
}

// NewWorldObject creates a new object in the game world.
func NewWorldObject(objectID uint32, name string, regionID uint16, loc Location) *WorldObject {
	return &WorldObject{
		objectID: objectID,
		name:     name,
		regionID: regionID,
		location: loc,
	}
}

// ObjectID returns the unique object ID (immutable after creation).
func (w *WorldObject) ObjectID() uint32 {
	return w.objectID
}

// Name returns the object name.
func (w *WorldObject) Name() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.name
}

// RegionID returns the region the object is in.
func (w *WorldObject) RegionID() uint16 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.regionID
}

// Location returns a copy of the object position.
func (w *WorldObject) Location() Location {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.location
}

// SetLocation moves the object within its region.
func (w *WorldObject) SetLocation(loc Location) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.location = loc
}

// Teleport moves the object to another region.
func (w *WorldObject) Teleport(regionID uint16, loc Location) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.regionID = regionID
	w.location = loc
}
