package pathing

import (
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/dolgo/internal/game/pathing/detour"
)

// fakeLibrary is an in-memory detour.Library. Straight paths are lines
// split into segments of at most fakeSegment mesh units.
type fakeLibrary struct {
	mu         sync.Mutex
	nextRef    uintptr
	liveMeshes map[detour.MeshRef]string
	liveQuery  map[detour.QueryRef]bool
	failLoad   map[string]bool

	loads          atomic.Int32
	queriesCreated atomic.Int32
	queriesFreed   atomic.Int32
	pathCalls      atomic.Int32
	randomCalls    atomic.Int32
	closestCalls   atomic.Int32

	// overrides
	pathStatus    detour.Status
	pathOverride  func(start, end detour.Vec3) []detour.Vec3
	pathHook      func()
	closestStatus detour.Status
	randomStatus  detour.Status
}

const fakeSegment = 10

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{
		liveMeshes: make(map[detour.MeshRef]string),
		liveQuery:  make(map[detour.QueryRef]bool),
		failLoad:   make(map[string]bool),
	}
}

func (f *fakeLibrary) LoadNavMesh(path string) (detour.MeshRef, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLoad[filepath.Base(path)] {
		return 0, false
	}
	f.loads.Add(1)
	f.nextRef++
	ref := detour.MeshRef(f.nextRef)
	f.liveMeshes[ref] = path
	return ref, true
}

func (f *fakeLibrary) FreeNavMesh(mesh detour.MeshRef) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.liveMeshes, mesh)
}

func (f *fakeLibrary) CreateNavMeshQuery(mesh detour.MeshRef) (detour.QueryRef, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.liveMeshes[mesh]; !ok {
		return 0, false
	}
	f.queriesCreated.Add(1)
	f.nextRef++
	q := detour.QueryRef(f.nextRef)
	f.liveQuery[q] = true
	return q, true
}

func (f *fakeLibrary) FreeNavMeshQuery(query detour.QueryRef) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.liveQuery, query)
	f.queriesFreed.Add(1)
}

func (f *fakeLibrary) liveMeshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.liveMeshes)
}

func (f *fakeLibrary) PathStraight(_ detour.QueryRef, start, end, _ detour.Vec3, _ detour.Filter, _ detour.StraightPathOptions, points []float32, _ []detour.PolyFlags) (int, detour.Status) {
	f.pathCalls.Add(1)
	if f.pathHook != nil {
		f.pathHook()
	}

	status := detour.Success
	if f.pathStatus != 0 {
		status = f.pathStatus
	}
	if !status.Succeeded() {
		return 0, status
	}

	var verts []detour.Vec3
	if f.pathOverride != nil {
		verts = f.pathOverride(start, end)
	} else {
		verts = lineVerts(start, end)
	}

	n := 0
	for _, v := range verts {
		if (n+1)*3 > len(points) {
			break
		}
		copy(points[n*3:], v[:])
		n++
	}
	return n, status
}

func lineVerts(start, end detour.Vec3) []detour.Vec3 {
	dx, dy, dz := end[0]-start[0], end[1]-start[1], end[2]-start[2]
	dist := math.Sqrt(float64(dx*dx + dy*dy + dz*dz))
	segments := int(math.Ceil(dist / fakeSegment))
	if segments < 1 {
		segments = 1
	}
	verts := make([]detour.Vec3, 0, segments+1)
	for i := 0; i <= segments; i++ {
		t := float32(i) / float32(segments)
		verts = append(verts, detour.Vec3{start[0] + dx*t, start[1] + dy*t, start[2] + dz*t})
	}
	return verts
}

func (f *fakeLibrary) FindRandomPointAroundCircle(_ detour.QueryRef, center detour.Vec3, radius float32, _ detour.Vec3, _ detour.Filter) (detour.Vec3, detour.Status) {
	f.randomCalls.Add(1)
	if f.randomStatus != 0 && !f.randomStatus.Succeeded() {
		return detour.Vec3{}, f.randomStatus
	}
	return detour.Vec3{center[0] + radius/2, center[1], center[2]}, detour.Success
}

func (f *fakeLibrary) FindClosestPoint(_ detour.QueryRef, center, _ detour.Vec3, _ detour.Filter) (detour.Vec3, detour.Status) {
	f.closestCalls.Add(1)
	if f.closestStatus != 0 && !f.closestStatus.Succeeded() {
		return detour.Vec3{}, f.closestStatus
	}
	// snap to a floor at mesh height 3 (world Z 96)
	return detour.Vec3{center[0], 3, center[2]}, detour.Success
}

type testZone struct {
	id      uint16
	enabled atomic.Bool
}

func newTestZone(id uint16) *testZone { return &testZone{id: id} }

func (z *testZone) ID() uint16                   { return z.id }
func (z *testZone) IsPathingEnabled() bool       { return z.enabled.Load() }
func (z *testZone) SetPathingEnabled(value bool) { z.enabled.Store(value) }

// writeMeshes creates mesh files for ids in a temp dir.
func writeMeshes(t *testing.T, ids ...uint16) string {
	t.Helper()
	dir := t.TempDir()
	for _, id := range ids {
		writeMesh(t, dir, id, []byte("navmesh"))
	}
	return dir
}

func writeMesh(t *testing.T, dir string, id uint16, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(MeshPath(dir, id), data, 0o644))
}

// newTestLocal returns an initialized LocalManager over a fake library.
func newTestLocal(t *testing.T, zones []Zone, meshIDs ...uint16) (*LocalManager, *fakeLibrary) {
	t.Helper()
	lib := newFakeLibrary()
	dir := writeMeshes(t, meshIDs...)
	m := NewLocalManager(LocalConfig{NavMeshDir: dir, LoaderWorkers: 2}, func(string) (detour.Library, error) {
		return lib, nil
	})
	require.NoError(t, m.Init(t.Context(), zones))
	t.Cleanup(m.Stop)
	return m, lib
}
