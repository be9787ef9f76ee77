package pathing

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/dolgo/internal/game/pathing/detour"
)

var (
	// ErrNavMeshNotFound means the zone has no precomputed mesh file.
	// This is expected for most zones.
	ErrNavMeshNotFound = errors.New("navmesh file not found")
	// ErrNavMeshAlreadyLoaded is a double registration of a zone.
	ErrNavMeshAlreadyLoaded = errors.New("navmesh already loaded")
	// ErrNavMeshLoad covers unreadable files and native load failures.
	ErrNavMeshLoad = errors.New("navmesh load failed")
	// ErrNavMeshUnavailable is returned for queries against an unloaded zone.
	ErrNavMeshUnavailable = errors.New("navmesh unavailable")
	// ErrQueryCreate means the native layer refused to create a query object.
	ErrQueryCreate = errors.New("navmesh query create failed")
)

// MeshPath returns the navmesh file of a zone: <dir>/zoneNNN.nav.
func MeshPath(dir string, zoneID uint16) string {
	return filepath.Join(dir, fmt.Sprintf("zone%03d.nav", zoneID))
}

// NavMeshInfo describes a loaded navmesh.
type NavMeshInfo struct {
	ZoneID     uint16
	Path       string
	Generation uint64
	Digest     string
	Queries    int
	LoadedAt   time.Time
}

// navMesh is one loaded mesh plus the query objects created for it.
// Query objects are checked out exclusively, so a native query is never
// used by two goroutines at once. They are freed together with the mesh.
type navMesh struct {
	zone       Zone
	path       string
	digest     [blake2b.Size256]byte
	generation uint64
	loadedAt   time.Time

	lib detour.Library
	ref detour.MeshRef

	mu     sync.RWMutex // shared while querying, exclusive while closing
	closed bool

	poolMu  sync.Mutex
	idle    []detour.QueryRef
	created int
}

func (m *navMesh) acquire() (detour.QueryRef, error) {
	m.poolMu.Lock()
	if n := len(m.idle); n > 0 {
		q := m.idle[n-1]
		m.idle = m.idle[:n-1]
		m.poolMu.Unlock()
		return q, nil
	}
	m.poolMu.Unlock()

	q, ok := m.lib.CreateNavMeshQuery(m.ref)
	if !ok {
		return 0, fmt.Errorf("%w: zone %d", ErrQueryCreate, m.zone.ID())
	}

	m.poolMu.Lock()
	m.created++
	m.poolMu.Unlock()
	return q, nil
}

func (m *navMesh) release(q detour.QueryRef) {
	m.poolMu.Lock()
	m.idle = append(m.idle, q)
	m.poolMu.Unlock()
}

// withQuery runs fn with a query object owned by the caller for the
// duration of the call.
func (m *navMesh) withQuery(fn func(q detour.QueryRef)) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrNavMeshUnavailable
	}

	q, err := m.acquire()
	if err != nil {
		return err
	}
	defer m.release(q)

	fn(q)
	return nil
}

// close waits for in-flight queries, then frees queries and the mesh.
func (m *navMesh) close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true

	m.poolMu.Lock()
	idle := m.idle
	m.idle = nil
	m.poolMu.Unlock()

	for _, q := range idle {
		m.lib.FreeNavMeshQuery(q)
	}
	m.lib.FreeNavMesh(m.ref)
}

func (m *navMesh) info() NavMeshInfo {
	m.poolMu.Lock()
	created := m.created
	m.poolMu.Unlock()

	return NavMeshInfo{
		ZoneID:     m.zone.ID(),
		Path:       m.path,
		Generation: m.generation,
		Digest:     hex.EncodeToString(m.digest[:]),
		Queries:    created,
		LoadedAt:   m.loadedAt,
	}
}

// Registry owns the navmesh of every zone that has one.
// Thread-safe: load and unload may run concurrently with queries.
type Registry struct {
	lib detour.Library
	dir string

	mu     sync.RWMutex
	meshes map[uint16]*navMesh

	generation atomic.Uint64
}

// NewRegistry creates an empty registry reading meshes from dir.
func NewRegistry(lib detour.Library, dir string) *Registry {
	return &Registry{
		lib:    lib,
		dir:    dir,
		meshes: make(map[uint16]*navMesh),
	}
}

// Dir returns the navmesh directory.
func (r *Registry) Dir() string { return r.dir }

func (r *Registry) lookup(zoneID uint16) *navMesh {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.meshes[zoneID]
}

func (r *Registry) readMesh(zoneID uint16) (string, []byte, error) {
	path := MeshPath(r.dir, zoneID)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil, fmt.Errorf("zone %d: %w: %s", zoneID, ErrNavMeshNotFound, path)
		}
		return path, nil, fmt.Errorf("zone %d: %w: %v", zoneID, ErrNavMeshLoad, err)
	}
	return path, data, nil
}

// LoadNavMesh loads the mesh file of zone and enables pathing for it.
func (r *Registry) LoadNavMesh(zone Zone) error {
	id := zone.ID()
	if r.lookup(id) != nil {
		return fmt.Errorf("loading navmesh for zone %d: %w", id, ErrNavMeshAlreadyLoaded)
	}

	path, data, err := r.readMesh(id)
	if err != nil {
		if errors.Is(err, ErrNavMeshNotFound) {
			slog.Debug("navmesh not found", "zone", id, "file", path)
		} else {
			slog.Error("reading navmesh failed", "zone", id, "file", path, "err", err)
		}
		return err
	}

	ref, ok := r.lib.LoadNavMesh(path)
	if !ok {
		slog.Error("loading navmesh failed", "zone", id, "file", path)
		if ref != 0 {
			r.lib.FreeNavMesh(ref)
		}
		return fmt.Errorf("zone %d: %w", id, ErrNavMeshLoad)
	}
	if ref == 0 {
		slog.Error("loading navmesh failed: nil mesh pointer", "zone", id, "file", path)
		return fmt.Errorf("zone %d: %w: nil mesh pointer", id, ErrNavMeshLoad)
	}

	m := &navMesh{
		zone:       zone,
		path:       path,
		digest:     blake2b.Sum256(data),
		generation: r.generation.Add(1),
		loadedAt:   time.Now(),
		lib:        r.lib,
		ref:        ref,
	}

	r.mu.Lock()
	if _, exists := r.meshes[id]; exists {
		r.mu.Unlock()
		r.lib.FreeNavMesh(ref)
		return fmt.Errorf("loading navmesh for zone %d: %w", id, ErrNavMeshAlreadyLoaded)
	}
	r.meshes[id] = m
	zone.SetPathingEnabled(true)
	r.mu.Unlock()

	slog.Info("navmesh loaded",
		"zone", id,
		"generation", m.generation,
		"digest", hex.EncodeToString(m.digest[:8]))
	return nil
}

// UnloadNavMesh disables pathing for zone and frees its mesh.
// Waits for queries running against the mesh. No-op if not loaded.
func (r *Registry) UnloadNavMesh(zone Zone) {
	id := zone.ID()

	r.mu.Lock()
	m, ok := r.meshes[id]
	if ok {
		delete(r.meshes, id)
		zone.SetPathingEnabled(false)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	m.close()
	slog.Info("navmesh unloaded", "zone", id, "generation", m.generation)
}

// ReloadNavMesh replaces the mesh of zone when its file changed.
// Returns true if a new mesh was loaded.
func (r *Registry) ReloadNavMesh(zone Zone) (bool, error) {
	id := zone.ID()
	current := r.lookup(id)
	if current == nil {
		if err := r.LoadNavMesh(zone); err != nil {
			return false, err
		}
		return true, nil
	}

	_, data, err := r.readMesh(id)
	if err != nil {
		return false, err
	}
	if blake2b.Sum256(data) == current.digest {
		slog.Debug("navmesh unchanged", "zone", id, "generation", current.generation)
		return false, nil
	}

	r.UnloadNavMesh(zone)
	if err := r.LoadNavMesh(zone); err != nil {
		return false, err
	}
	return true, nil
}

// LoadAll loads the meshes of zones with at most workers loads at a time.
// Missing or broken meshes are skipped; only a double registration or
// context cancellation aborts. Returns the number of meshes loaded.
func (r *Registry) LoadAll(ctx context.Context, zones []Zone, workers int) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	var loaded atomic.Int32
	for _, zone := range zones {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := r.LoadNavMesh(zone)
			switch {
			case err == nil:
				loaded.Add(1)
			case errors.Is(err, ErrNavMeshNotFound), errors.Is(err, ErrNavMeshLoad):
			default:
				return err
			}
			return nil
		})
	}

	err := g.Wait()
	return int(loaded.Load()), err
}

// Stop frees every mesh and its query objects.
func (r *Registry) Stop() {
	r.mu.Lock()
	meshes := r.meshes
	r.meshes = make(map[uint16]*navMesh)
	for _, m := range meshes {
		m.zone.SetPathingEnabled(false)
	}
	r.mu.Unlock()

	for _, m := range meshes {
		m.close()
	}
	if len(meshes) > 0 {
		slog.Info("navmeshes released", "count", len(meshes))
	}
}

// HasNavmesh reports whether zone has a loaded mesh.
func (r *Registry) HasNavmesh(zone Zone) bool {
	if zone == nil {
		return false
	}
	return r.lookup(zone.ID()) != nil
}

// Meshes returns a snapshot of loaded meshes ordered by zone.
func (r *Registry) Meshes() []NavMeshInfo {
	r.mu.RLock()
	out := make([]NavMeshInfo, 0, len(r.meshes))
	for _, m := range r.meshes {
		out = append(out, m.info())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ZoneID < out[j].ZoneID })
	return out
}

// withQuery runs fn against the mesh of zone.
func (r *Registry) withQuery(zone Zone, fn func(q detour.QueryRef)) error {
	if zone == nil {
		return ErrNavMeshUnavailable
	}
	m := r.lookup(zone.ID())
	if m == nil {
		return ErrNavMeshUnavailable
	}
	return m.withQuery(fn)
}
