package pathing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/udisondev/dolgo/internal/game/pathing/detour"
)

// Poly pick extents in mesh units.
var (
	straightPathPolyPickExt = detour.Vec3{2, 2, 8}
	randomPointPolyPickExt  = detour.Vec3{2, 4, 2}
)

// Opener opens the native navmesh library.
type Opener func(path string) (detour.Library, error)

// OpenNative opens the dol_detour shared library.
func OpenNative(path string) (detour.Library, error) {
	lib, err := detour.Open(path)
	if err != nil {
		return nil, err
	}
	return lib, nil
}

// LocalConfig configures the native backend.
type LocalConfig struct {
	LibraryPath   string
	NavMeshDir    string
	LoaderWorkers int
}

// Stats counts queries issued to the native layer.
type Stats struct {
	PathQueries      int64
	RandomQueries    int64
	ClosestQueries   int64
	Failed           int64
	MalformedResults int64
}

// LocalManager runs queries against natively loaded navmeshes.
type LocalManager struct {
	cfg  LocalConfig
	open Opener

	registry atomic.Pointer[Registry]

	paths     atomic.Int64
	randoms   atomic.Int64
	closests  atomic.Int64
	failed    atomic.Int64
	malformed atomic.Int64
}

var _ Manager = (*LocalManager)(nil)

// NewLocalManager creates an uninitialized native backend. A nil open
// uses OpenNative.
func NewLocalManager(cfg LocalConfig, open Opener) *LocalManager {
	if open == nil {
		open = OpenNative
	}
	if cfg.NavMeshDir == "" {
		cfg.NavMeshDir = "pathing"
	}
	return &LocalManager{cfg: cfg, open: open}
}

// Init opens the native library and loads the meshes of zones.
// Returns detour.ErrLibraryUnavailable if the library cannot be used and
// ErrNavMeshAlreadyLoaded if zones contains the same zone twice.
func (m *LocalManager) Init(ctx context.Context, zones []Zone) error {
	if m.registry.Load() != nil {
		return errors.New("local pathing manager already initialized")
	}

	lib, err := m.open(m.cfg.LibraryPath)
	if err != nil {
		slog.Error("pathing library unavailable",
			"library", m.cfg.LibraryPath,
			"arch", runtime.GOARCH,
			"err", err)
		if !errors.Is(err, detour.ErrLibraryUnavailable) {
			err = fmt.Errorf("%w: %v", detour.ErrLibraryUnavailable, err)
		}
		return err
	}

	reg := NewRegistry(lib, m.cfg.NavMeshDir)
	loaded, err := reg.LoadAll(ctx, zones, m.cfg.LoaderWorkers)
	if err != nil {
		reg.Stop()
		closeLibrary(lib)
		return fmt.Errorf("loading navmeshes: %w", err)
	}

	m.registry.Store(reg)
	slog.Info("local pathing initialized",
		"zones", len(zones),
		"navmeshes", loaded,
		"dir", m.cfg.NavMeshDir)
	return nil
}

// Stop releases all navmeshes.
func (m *LocalManager) Stop() {
	reg := m.registry.Swap(nil)
	if reg == nil {
		return
	}
	reg.Stop()
	closeLibrary(reg.lib)
}

// closeLibrary unloads lib if it owns a native handle.
func closeLibrary(lib detour.Library) {
	if c, ok := lib.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			slog.Warn("closing pathing library", "err", err)
		}
	}
}

// Registry returns the mesh registry, nil before Init.
func (m *LocalManager) Registry() *Registry {
	return m.registry.Load()
}

// LoadNavMesh loads the mesh of a single zone.
func (m *LocalManager) LoadNavMesh(zone Zone) error {
	reg := m.registry.Load()
	if reg == nil {
		return ErrNavMeshUnavailable
	}
	return reg.LoadNavMesh(zone)
}

// UnloadNavMesh unloads the mesh of a single zone.
func (m *LocalManager) UnloadNavMesh(zone Zone) {
	if reg := m.registry.Load(); reg != nil {
		reg.UnloadNavMesh(zone)
	}
}

// Meshes returns the loaded navmeshes ordered by zone, nil before Init.
func (m *LocalManager) Meshes() []NavMeshInfo {
	reg := m.registry.Load()
	if reg == nil {
		return nil
	}
	return reg.Meshes()
}

// ReloadChanged reloads the meshes of zones whose files changed on disk
// and loads meshes that appeared since Init. Zones whose file is missing
// are skipped. Returns the number of meshes (re)loaded.
func (m *LocalManager) ReloadChanged(zones []Zone) (int, error) {
	reg := m.registry.Load()
	if reg == nil {
		return 0, ErrNavMeshUnavailable
	}

	reloaded := 0
	var errs []error
	for _, zone := range zones {
		changed, err := reg.ReloadNavMesh(zone)
		switch {
		case errors.Is(err, ErrNavMeshNotFound):
		case err != nil:
			errs = append(errs, err)
		case changed:
			reloaded++
		}
	}
	if reloaded > 0 {
		slog.Info("navmeshes reloaded", "count", reloaded)
	}
	return reloaded, errors.Join(errs...)
}

// Stats returns query counters.
func (m *LocalManager) Stats() Stats {
	return Stats{
		PathQueries:      m.paths.Load(),
		RandomQueries:    m.randoms.Load(),
		ClosestQueries:   m.closests.Load(),
		Failed:           m.failed.Load(),
		MalformedResults: m.malformed.Load(),
	}
}

func (m *LocalManager) IsAvailable() bool {
	return m.registry.Load() != nil
}

func (m *LocalManager) HasNavmesh(zone Zone) bool {
	reg := m.registry.Load()
	return reg != nil && reg.HasNavmesh(zone)
}

func (m *LocalManager) GetPathStraight(zone Zone, start, destination Point3D) (LinePath, PathingError) {
	reg := m.registry.Load()
	if reg == nil || !reg.HasNavmesh(zone) {
		return LinePath{}, NavmeshUnavailable
	}
	m.paths.Add(1)

	var (
		count  int
		status detour.Status
		points = make([]float32, detour.MaxPathPoints*3)
		flags  = make([]detour.PolyFlags, detour.MaxPathPoints)
	)
	err := reg.withQuery(zone, func(q detour.QueryRef) {
		count, status = reg.lib.PathStraight(q, ToMesh(start), ToMesh(destination),
			straightPathPolyPickExt, detour.DefaultFilter(), detour.AllCrossings, points, flags)
	})
	if err != nil {
		return LinePath{}, m.queryError(zone, err)
	}

	if !status.Succeeded() {
		m.failed.Add(1)
		return LinePath{}, NoPathFound
	}

	waypoints := make([]Point3D, 0, count)
	for i := range count {
		v := VectorFromMesh(detour.Vec3{points[i*3], points[i*3+1], points[i*3+2]})
		if !validWaypoint(v) {
			m.malformed.Add(1)
			slog.Error("navmesh returned malformed waypoint",
				"zone", zone.ID(),
				"index", i,
				"x", v.X, "y", v.Y, "z", v.Z,
				"start", start,
				"destination", destination)
			return LinePath{}, NoPathFound
		}
		waypoints = append(waypoints, v.Point())
	}

	if status.Partial() {
		return NewLinePath(waypoints...), PartialPathFound
	}
	return NewLinePath(waypoints...), PathFound
}

func (m *LocalManager) GetRandomPoint(zone Zone, center Point3D, radius float32) (Vector3, bool) {
	reg := m.registry.Load()
	if reg == nil || !reg.HasNavmesh(zone) {
		return Vector3{}, false
	}
	m.randoms.Add(1)

	var (
		out    detour.Vec3
		status detour.Status
	)
	err := reg.withQuery(zone, func(q detour.QueryRef) {
		out, status = reg.lib.FindRandomPointAroundCircle(q, ToMesh(center), radius*ConversionFactor,
			randomPointPolyPickExt, detour.DefaultFilter())
	})
	if err != nil {
		m.queryError(zone, err)
		return Vector3{}, false
	}
	if !status.Succeeded() {
		m.failed.Add(1)
		return Vector3{}, false
	}
	return VectorFromMesh(out), true
}

func (m *LocalManager) GetClosestPoint(zone Zone, position Vector3, xRange, yRange, zRange float32) (Vector3, bool) {
	reg := m.registry.Load()
	if reg == nil || !reg.HasNavmesh(zone) {
		return position, true
	}
	m.closests.Add(1)

	center := position
	center.Z += VerticalOffset
	ext := VectorToMesh(Vector3{X: xRange, Y: yRange, Z: zRange})

	var (
		out    detour.Vec3
		status detour.Status
	)
	err := reg.withQuery(zone, func(q detour.QueryRef) {
		out, status = reg.lib.FindClosestPoint(q, VectorToMesh(center), ext, detour.DefaultFilter())
	})
	if err != nil {
		if errors.Is(err, ErrNavMeshUnavailable) {
			return position, true
		}
		m.queryError(zone, err)
		return Vector3{}, false
	}
	if !status.Succeeded() {
		m.failed.Add(1)
		return Vector3{}, false
	}
	return VectorFromMesh(out), true
}

// queryError maps a registry error to a pathing result.
func (m *LocalManager) queryError(zone Zone, err error) PathingError {
	if errors.Is(err, ErrNavMeshUnavailable) {
		return NavmeshUnavailable
	}
	m.failed.Add(1)
	slog.Warn("navmesh query failed", "zone", zone.ID(), "err", err)
	return NoPathFound
}
