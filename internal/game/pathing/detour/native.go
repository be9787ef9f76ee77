package detour

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
)

// ErrLibraryUnavailable is returned when the native library cannot be
// opened or is missing symbols.
var ErrLibraryUnavailable = errors.New("detour library unavailable")

// DefaultLibraryPath returns the platform specific library location,
// relative to the server working directory.
func DefaultLibraryPath() string {
	switch runtime.GOOS {
	case "windows":
		return `lib\dol_detour.dll`
	case "darwin":
		return "lib/libdol_detour.dylib"
	default:
		return "lib/libdol_detour.so"
	}
}

// Native is a Library backed by the dol_detour shared library.
type Native struct {
	handle uintptr
	path   string

	loadNavMesh                 func(file string, mesh *uintptr) bool
	freeNavMesh                 func(mesh uintptr) bool
	createNavMeshQuery          func(mesh uintptr, query *uintptr) bool
	freeNavMeshQuery            func(query uintptr) bool
	pathStraight                func(query uintptr, start, end, polyPickExt *float32, filter *PolyFlags, options uint32, pointCount *int32, points *float32, flags *PolyFlags) uint32
	findRandomPointAroundCircle func(query uintptr, center *float32, radius float32, polyPickExt *float32, filter *PolyFlags, out *float32) uint32
	findClosestPoint            func(query uintptr, center, polyPickExt *float32, filter *PolyFlags, out *float32) uint32
}

var _ Library = (*Native)(nil)

// Open loads the library at path and binds all symbols. The library is
// probed with a load of a nonexistent mesh before it is returned.
func Open(path string) (*Native, error) {
	if path == "" {
		path = DefaultLibraryPath()
	}

	handle, err := openLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrLibraryUnavailable, path, err)
	}

	n := &Native{handle: handle, path: path}
	if err := n.bind(); err != nil {
		_ = closeLibrary(handle)
		return nil, err
	}

	var dummy uintptr
	if n.loadNavMesh("this file does not exist!", &dummy) || dummy != 0 {
		slog.Warn("detour probe loaded a nonexistent mesh", "library", path)
	}

	slog.Debug("detour library loaded",
		"library", path,
		"arch", runtime.GOARCH,
		"ptr_size", unsafe.Sizeof(uintptr(0))*8)
	return n, nil
}

// bind registers every symbol. purego panics on a missing symbol, which
// is turned into an error here.
func (n *Native) bind() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: binding %s: %v", ErrLibraryUnavailable, n.path, r)
		}
	}()

	purego.RegisterLibFunc(&n.loadNavMesh, n.handle, "LoadNavMesh")
	purego.RegisterLibFunc(&n.freeNavMesh, n.handle, "FreeNavMesh")
	purego.RegisterLibFunc(&n.createNavMeshQuery, n.handle, "CreateNavMeshQuery")
	purego.RegisterLibFunc(&n.freeNavMeshQuery, n.handle, "FreeNavMeshQuery")
	purego.RegisterLibFunc(&n.pathStraight, n.handle, "PathStraight")
	purego.RegisterLibFunc(&n.findRandomPointAroundCircle, n.handle, "FindRandomPointAroundCircle")
	purego.RegisterLibFunc(&n.findClosestPoint, n.handle, "FindClosestPoint")
	return nil
}

// Close unloads the shared library. All meshes and queries must be freed first.
func (n *Native) Close() error {
	if n.handle == 0 {
		return nil
	}
	err := closeLibrary(n.handle)
	n.handle = 0
	return err
}

// Path returns the file the library was loaded from.
func (n *Native) Path() string { return n.path }

func (n *Native) LoadNavMesh(path string) (MeshRef, bool) {
	var mesh uintptr
	ok := n.loadNavMesh(path, &mesh)
	return MeshRef(mesh), ok
}

func (n *Native) FreeNavMesh(mesh MeshRef) {
	if mesh != 0 {
		n.freeNavMesh(uintptr(mesh))
	}
}

func (n *Native) CreateNavMeshQuery(mesh MeshRef) (QueryRef, bool) {
	var query uintptr
	ok := n.createNavMeshQuery(uintptr(mesh), &query)
	return QueryRef(query), ok && query != 0
}

func (n *Native) FreeNavMeshQuery(query QueryRef) {
	if query != 0 {
		n.freeNavMeshQuery(uintptr(query))
	}
}

func (n *Native) PathStraight(query QueryRef, start, end, polyPickExt Vec3, filter Filter, options StraightPathOptions, points []float32, flags []PolyFlags) (int, Status) {
	if len(points) < 3 || len(flags) < len(points)/3 {
		return 0, Failure | InvalidParam
	}
	filterArr := [2]PolyFlags{filter.Include, filter.Exclude}
	var count int32
	st := n.pathStraight(uintptr(query), &start[0], &end[0], &polyPickExt[0], &filterArr[0],
		uint32(options), &count, &points[0], &flags[0])
	if capacity := int32(len(points) / 3); count > capacity {
		count = capacity
	}
	if count < 0 {
		count = 0
	}
	return int(count), Status(st)
}

func (n *Native) FindRandomPointAroundCircle(query QueryRef, center Vec3, radius float32, polyPickExt Vec3, filter Filter) (Vec3, Status) {
	filterArr := [2]PolyFlags{filter.Include, filter.Exclude}
	var out Vec3
	st := n.findRandomPointAroundCircle(uintptr(query), &center[0], radius, &polyPickExt[0], &filterArr[0], &out[0])
	return out, Status(st)
}

func (n *Native) FindClosestPoint(query QueryRef, center, polyPickExt Vec3, filter Filter) (Vec3, Status) {
	filterArr := [2]PolyFlags{filter.Include, filter.Exclude}
	var out Vec3
	st := n.findClosestPoint(uintptr(query), &center[0], &polyPickExt[0], &filterArr[0], &out[0])
	return out, Status(st)
}
