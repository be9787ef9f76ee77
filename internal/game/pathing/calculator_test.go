package pathing

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/dolgo/internal/game/pathing/detour"
)

type testOwner struct {
	mu     sync.Mutex
	pos    Point3D
	flying bool
	zone   Zone
	zoneAt func(p Point3D) Zone
}

func (o *testOwner) Position() Point3D {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pos
}

func (o *testOwner) setPosition(p Point3D) {
	o.mu.Lock()
	o.pos = p
	o.mu.Unlock()
}

func (o *testOwner) IsFlying() bool    { return o.flying }
func (o *testOwner) CurrentZone() Zone { return o.zone }

func (o *testOwner) ZoneAt(p Point3D) Zone {
	if o.zoneAt != nil {
		return o.zoneAt(p)
	}
	return o.zone
}

func newCalculatorFixture(t *testing.T) (*PathCalculator, *testOwner, *fakeLibrary) {
	t.Helper()
	zone := newTestZone(1)
	m, lib := newTestLocal(t, []Zone{zone}, 1)
	owner := &testOwner{pos: Point3D{X: 0, Y: 0, Z: 100}, zone: zone}
	return NewPathCalculator(owner, m), owner, lib
}

func TestShouldPathTooClose(t *testing.T) {
	c, owner, _ := newCalculatorFixture(t)
	owner.setPosition(Point3D{X: 0, Y: 0, Z: 0})
	assert.False(t, c.ShouldPath(Point3D{X: 50, Y: 0, Z: 0}))

	owner.setPosition(Point3D{X: 0, Y: 0, Z: 100})
	assert.False(t, c.ShouldPath(Point3D{X: 79, Y: 0, Z: 100}))
	assert.True(t, c.ShouldPath(Point3D{X: 80, Y: 0, Z: 100}))
}

func TestShouldPathGates(t *testing.T) {
	c, owner, _ := newCalculatorFixture(t)
	target := Point3D{X: 1000, Y: 0, Z: 100}
	require.True(t, c.ShouldPath(target))

	owner.flying = true
	assert.False(t, c.ShouldPath(target), "flying")
	owner.flying = false

	owner.setPosition(Point3D{X: 0, Y: 0, Z: 0})
	assert.False(t, c.ShouldPath(target), "at or below zero")
	owner.setPosition(Point3D{X: 0, Y: 0, Z: 100})

	other := newTestZone(2)
	owner.zoneAt = func(Point3D) Zone { return other }
	assert.False(t, c.ShouldPath(target), "target in another zone")
	owner.zoneAt = nil

	zone := owner.zone
	owner.zone = newTestZone(3)
	assert.False(t, c.ShouldPath(target), "zone without navmesh")
	owner.zone = nil
	assert.False(t, c.ShouldPath(target), "no zone")
	owner.zone = zone
}

func TestIsSupported(t *testing.T) {
	c, owner, _ := newCalculatorFixture(t)
	assert.True(t, IsSupported(owner, c.mgr))
	assert.False(t, IsSupported(owner, NullManager{}))
}

func TestCalculateNextTargetFollowsPath(t *testing.T) {
	c, owner, lib := newCalculatorFixture(t)
	target := Point3D{X: 1000, Y: 0, Z: 100}

	next, ok, reason := c.CalculateNextTarget(target)
	require.True(t, ok)
	assert.Equal(t, NoProblem, reason)
	assert.True(t, c.DidFindPath())
	assert.Equal(t, int32(1), lib.pathCalls.Load())
	assert.Less(t, next.Distance(target), owner.Position().Distance(target))
	assert.Equal(t, Point3D{X: 250, Y: 0, Z: 108}, next)
	assert.Len(t, c.PendingNodes(), 3, "first and last node dropped")

	owner.setPosition(next)
	next2, ok, reason := c.CalculateNextTarget(target)
	require.True(t, ok)
	assert.Equal(t, NoProblem, reason)
	assert.Equal(t, Point3D{X: 500, Y: 0, Z: 108}, next2)
	assert.Equal(t, int32(1), lib.pathCalls.Load(), "no replot for an unchanged target")

	owner.setPosition(next2)
	next3, ok, _ := c.CalculateNextTarget(target)
	require.True(t, ok)
	assert.Equal(t, Point3D{X: 750, Y: 0, Z: 108}, next3)

	owner.setPosition(next3)
	_, ok, reason = c.CalculateNextTarget(target)
	assert.False(t, ok)
	assert.Equal(t, Unknown, reason, "path fully consumed")
}

func TestCalculateNextTargetReusesPathForSmallTargetMoves(t *testing.T) {
	c, _, lib := newCalculatorFixture(t)

	first, ok, _ := c.CalculateNextTarget(Point3D{X: 1000, Y: 0, Z: 100})
	require.True(t, ok)

	again, ok, _ := c.CalculateNextTarget(Point3D{X: 1000, Y: 79, Z: 100})
	require.True(t, ok)
	assert.Equal(t, first, again)
	assert.Equal(t, int32(1), lib.pathCalls.Load())
}

func TestCalculateNextTargetReplotsOnTargetMove(t *testing.T) {
	c, _, lib := newCalculatorFixture(t)

	_, ok, _ := c.CalculateNextTarget(Point3D{X: 1000, Y: 0, Z: 100})
	require.True(t, ok)

	_, ok, _ = c.CalculateNextTarget(Point3D{X: 1000, Y: 80, Z: 100})
	require.True(t, ok)
	assert.Equal(t, int32(2), lib.pathCalls.Load())
}

func TestCalculateNextTargetForceReplot(t *testing.T) {
	c, _, lib := newCalculatorFixture(t)
	target := Point3D{X: 1000, Y: 0, Z: 100}

	_, _, _ = c.CalculateNextTarget(target)
	c.SetForceReplot(true)
	assert.True(t, c.ForceReplot())

	_, ok, _ := c.CalculateNextTarget(target)
	require.True(t, ok)
	assert.Equal(t, int32(2), lib.pathCalls.Load())
	assert.False(t, c.ForceReplot(), "cleared by the replot")
}

func TestForceReplotRequestedDuringReplotIsKept(t *testing.T) {
	c, owner, lib := newCalculatorFixture(t)
	target := Point3D{X: 1000, Y: 0, Z: 100}

	var teleport sync.Once
	lib.pathHook = func() {
		teleport.Do(func() {
			owner.setPosition(Point3D{X: 5000, Y: 5000, Z: 100})
			c.SetForceReplot(true)
		})
	}

	require.True(t, c.ReplotPath(target))
	assert.True(t, c.ForceReplot(), "request made while the query ran")

	_, _, _ = c.CalculateNextTarget(target)
	assert.Equal(t, int32(2), lib.pathCalls.Load(), "next step replots from the new position")
	assert.False(t, c.ForceReplot())
}

func TestCalculateNextTargetNoPathNeeded(t *testing.T) {
	c, _, lib := newCalculatorFixture(t)

	_, ok, reason := c.CalculateNextTarget(Point3D{X: 40, Y: 0, Z: 100})
	assert.False(t, ok)
	assert.Equal(t, NoProblem, reason)
	assert.True(t, c.DidFindPath())
	assert.Zero(t, lib.pathCalls.Load())
}

func TestCalculateNextTargetCrossZone(t *testing.T) {
	c, owner, lib := newCalculatorFixture(t)
	other := newTestZone(2)
	owner.zoneAt = func(p Point3D) Zone {
		if p.X > 500 {
			return other
		}
		return owner.zone
	}

	_, ok, reason := c.CalculateNextTarget(Point3D{X: 1000, Y: 0, Z: 100})
	assert.False(t, ok)
	assert.Equal(t, NoProblem, reason)
	assert.Zero(t, lib.pathCalls.Load())
}

func TestCalculateNextTargetNoPathFound(t *testing.T) {
	c, _, lib := newCalculatorFixture(t)
	lib.pathStatus = detour.Failure

	_, ok, reason := c.CalculateNextTarget(Point3D{X: 1000, Y: 0, Z: 100})
	assert.False(t, ok)
	assert.Equal(t, RecastFoundNoPath, reason)
	assert.False(t, c.DidFindPath())

	_, ok, reason = c.CalculateNextTarget(Point3D{X: 1000, Y: 0, Z: 100})
	assert.False(t, ok)
	assert.Equal(t, RecastFoundNoPath, reason)
	assert.Equal(t, int32(1), lib.pathCalls.Load())
}

func TestReplotKeepsLastNodeOfPartialPath(t *testing.T) {
	c, _, lib := newCalculatorFixture(t)
	lib.pathStatus = detour.Success | detour.PartialResult

	require.True(t, c.ReplotPath(Point3D{X: 1000, Y: 0, Z: 100}))
	nodes := c.PendingNodes()
	require.Len(t, nodes, 4)
	assert.Equal(t, Point3D{X: 1000, Y: 0, Z: 108}, nodes[3])
}

func TestReplotTinyPaths(t *testing.T) {
	c, _, lib := newCalculatorFixture(t)
	lib.pathOverride = func(start, _ detour.Vec3) []detour.Vec3 {
		return []detour.Vec3{start}
	}

	require.True(t, c.ReplotPath(Point3D{X: 1000, Y: 0, Z: 100}))
	assert.Empty(t, c.PendingNodes())
	assert.True(t, c.DidFindPath())
}

func TestReplotConcurrentCallsCollapse(t *testing.T) {
	c, _, lib := newCalculatorFixture(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	lib.pathHook = func() {
		close(entered)
		<-release
	}

	target := Point3D{X: 1000, Y: 0, Z: 100}
	var wg sync.WaitGroup
	wg.Add(1)
	var first bool
	go func() {
		defer wg.Done()
		first = c.ReplotPath(target)
	}()

	<-entered
	assert.False(t, c.ReplotPath(target), "second caller must not block")
	close(release)
	wg.Wait()

	assert.True(t, first)
	assert.Equal(t, int32(1), lib.pathCalls.Load())
	assert.True(t, c.DidFindPath())
}

func TestClear(t *testing.T) {
	c, _, lib := newCalculatorFixture(t)
	target := Point3D{X: 1000, Y: 0, Z: 100}

	_, ok, _ := c.CalculateNextTarget(target)
	require.True(t, ok)
	c.SetForceReplot(true)

	c.Clear()
	assert.Empty(t, c.PendingNodes())
	assert.False(t, c.DidFindPath())
	assert.False(t, c.ForceReplot())

	_, ok, _ = c.CalculateNextTarget(target)
	require.True(t, ok)
	assert.Equal(t, int32(2), lib.pathCalls.Load(), "cleared calculator replots")
}

func TestNextDoorReserved(t *testing.T) {
	c, _, _ := newCalculatorFixture(t)
	assert.Nil(t, c.NextDoor())
	assert.Equal(t, "DOOR_EN_ROUTE", DoorEnRoute.String())
	assert.Equal(t, "RECAST_FOUND_NO_PATH", RecastFoundNoPath.String())
}

func TestCalculatorOnNullBackend(t *testing.T) {
	zone := newTestZone(1)
	owner := &testOwner{pos: Point3D{Z: 100}, zone: zone}
	c := NewPathCalculator(owner, NullManager{})

	_, ok, reason := c.CalculateNextTarget(Point3D{X: 1000, Z: 100})
	assert.False(t, ok)
	assert.Equal(t, NoProblem, reason, "walk straight when pathing is unavailable")
}
