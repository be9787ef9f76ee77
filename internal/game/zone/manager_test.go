package zone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, zones ...*Zone) *Manager {
	t.Helper()
	m := NewManager()
	require.NoError(t, m.Init(zones))
	return m
}

func TestZoneAt(t *testing.T) {
	camelot := New(26, "Camelot Hills", 1, 0, 0, 65536, 65536, true)
	salisbury := New(27, "Salisbury Plains", 1, 65536, 0, 131072, 65536, true)
	emain := New(100, "Emain Macha", 51, 0, 0, 65536, 65536, false)
	m := newTestManager(t, camelot, salisbury, emain)

	assert.Same(t, camelot, m.ZoneAt(1, 100, 100))
	assert.Same(t, camelot, m.ZoneAt(1, 65535, 65535))
	assert.Same(t, salisbury, m.ZoneAt(1, 65536, 10))
	assert.Same(t, emain, m.ZoneAt(51, 100, 100), "same coordinates, other region")
	assert.Nil(t, m.ZoneAt(1, -1, 10))
	assert.Nil(t, m.ZoneAt(2, 100, 100))
}

func TestZoneByID(t *testing.T) {
	z := New(5, "Black Mountains South", 1, 0, 0, 1000, 1000, true)
	m := newTestManager(t, z)

	assert.Same(t, z, m.ZoneByID(5))
	assert.Nil(t, m.ZoneByID(6))
}

func TestInitDuplicate(t *testing.T) {
	m := NewManager()
	err := m.Init([]*Zone{
		New(1, "a", 1, 0, 0, 10, 10, true),
		New(1, "b", 1, 10, 10, 20, 20, true),
	})
	assert.Error(t, err)
}

func TestPathingZones(t *testing.T) {
	m := newTestManager(t,
		New(2, "b", 1, 0, 0, 10, 10, true),
		New(1, "a", 1, 10, 10, 20, 20, true),
		New(3, "c", 1, 20, 20, 30, 30, false),
	)

	zones := m.PathingZones()
	require.Len(t, zones, 2)
	assert.Equal(t, uint16(1), zones[0].ID())
	assert.Equal(t, uint16(2), zones[1].ID())
	assert.Len(t, m.Zones(), 3)
}

func TestZoneNormalizesBounds(t *testing.T) {
	z := New(1, "a", 1, 100, 100, 0, 0, true)
	minX, minY, maxX, maxY := z.Bounds()
	assert.Equal(t, [4]int32{0, 0, 100, 100}, [4]int32{minX, minY, maxX, maxY})
	assert.True(t, z.Contains(50, 50))
}

func TestPathingFlag(t *testing.T) {
	z := New(1, "a", 1, 0, 0, 10, 10, true)
	assert.False(t, z.IsPathingEnabled())
	z.SetPathingEnabled(true)
	assert.True(t, z.IsPathingEnabled())
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, int32(0), floorDiv(0, 8192))
	assert.Equal(t, int32(0), floorDiv(8191, 8192))
	assert.Equal(t, int32(1), floorDiv(8192, 8192))
	assert.Equal(t, int32(-1), floorDiv(-1, 8192))
	assert.Equal(t, int32(-1), floorDiv(-8192, 8192))
	assert.Equal(t, int32(-2), floorDiv(-8193, 8192))
}
