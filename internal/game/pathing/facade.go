package pathing

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/udisondev/dolgo/internal/game/pathing/detour"
)

// activeManager boxes the interface for atomic.Value, which requires a
// consistent concrete type.
type activeManager struct {
	Manager
}

// Facade selects the active pathing backend. Before Init, and whenever
// the native backend cannot be brought up, the null backend is active,
// so callers never need to check for a missing backend.
type Facade struct {
	null   NullManager
	local  *LocalManager
	active atomic.Value // activeManager
}

var _ Manager = (*Facade)(nil)

// NewFacade creates a facade. local may be nil when native pathing is
// disabled by configuration.
func NewFacade(local *LocalManager) *Facade {
	f := &Facade{local: local}
	f.active.Store(activeManager{f.null})
	return f
}

// Init brings up the native backend. It returns false if pathing stays
// on the null backend. The error is set only for failures that must stop
// the server (duplicate zone registration, canceled context).
func (f *Facade) Init(ctx context.Context, zones []Zone) (bool, error) {
	if f.local == nil {
		slog.Info("pathing disabled, using null backend")
		return false, nil
	}

	if err := f.local.Init(ctx, zones); err != nil {
		if errors.Is(err, detour.ErrLibraryUnavailable) {
			slog.Error("pathing unavailable, falling back to direct movement", "err", err)
			return false, nil
		}
		return false, err
	}

	f.active.Store(activeManager{f.local})
	slog.Info("pathing backend active", "backend", "local")
	return true, nil
}

// Stop releases native resources and reverts to the null backend.
func (f *Facade) Stop() {
	f.active.Store(activeManager{f.null})
	if f.local != nil {
		f.local.Stop()
	}
}

// Active returns the backend currently serving queries.
func (f *Facade) Active() Manager {
	return f.active.Load().(activeManager).Manager
}

// Local returns the native backend, nil if disabled.
func (f *Facade) Local() *LocalManager { return f.local }

func (f *Facade) GetPathStraight(zone Zone, start, destination Point3D) (LinePath, PathingError) {
	return f.Active().GetPathStraight(zone, start, destination)
}

func (f *Facade) GetRandomPoint(zone Zone, center Point3D, radius float32) (Vector3, bool) {
	return f.Active().GetRandomPoint(zone, center, radius)
}

func (f *Facade) GetClosestPoint(zone Zone, position Vector3, xRange, yRange, zRange float32) (Vector3, bool) {
	return f.Active().GetClosestPoint(zone, position, xRange, yRange, zRange)
}

func (f *Facade) HasNavmesh(zone Zone) bool { return f.Active().HasNavmesh(zone) }

func (f *Facade) IsAvailable() bool { return f.Active().IsAvailable() }
