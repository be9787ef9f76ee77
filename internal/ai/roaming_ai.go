package ai

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/dolgo/internal/game/pathing"
	"github.com/udisondev/dolgo/internal/model"
)

// RoamConfig tunes RoamingAI.
type RoamConfig struct {
	TickInterval time.Duration
	PauseMin     time.Duration
	PauseMax     time.Duration
	// SnapRange is the search extent used to put the spawn point on the mesh.
	SnapRange float32
}

// RoamingAI wanders an NPC around its spawn point. Movement follows navmesh
// waypoints when the zone has a mesh and walks straight otherwise.
type RoamingAI struct {
	npc   *model.Npc
	owner *npcOwner
	paths pathing.Manager
	calc  *pathing.PathCalculator
	cfg   RoamConfig
	now   func() time.Time

	isRunning atomic.Bool

	mu         sync.Mutex
	rng        *rand.Rand
	home       pathing.Point3D
	target     pathing.Point3D
	hasTarget  bool
	nextRoam   time.Time
	lastNoPath pathing.NoPathReason
}

// NewRoamingAI creates a roaming controller for npc.
func NewRoamingAI(npc *model.Npc, zones ZoneLocator, paths pathing.Manager, cfg RoamConfig) *RoamingAI {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.PauseMax < cfg.PauseMin {
		cfg.PauseMax = cfg.PauseMin
	}
	if cfg.SnapRange <= 0 {
		cfg.SnapRange = pathing.DefaultClosestPointRange
	}

	owner := &npcOwner{npc: npc, zones: zones}
	seed := uint64(npc.ObjectID())
	return &RoamingAI{
		npc:   npc,
		owner: owner,
		paths: paths,
		calc:  pathing.NewPathCalculator(owner, paths),
		cfg:   cfg,
		now:   time.Now,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		home:  toPoint(npc.Spawn().Location),
	}
}

// Start places the NPC on the mesh and makes it idle.
func (ai *RoamingAI) Start() {
	ai.snapHome()
	ai.isRunning.Store(true)
	ai.mu.Lock()
	ai.nextRoam = ai.now().Add(ai.pause())
	ai.mu.Unlock()
	ai.SetIntention(model.IntentionIdle)

	slog.Debug("roaming AI started",
		"npc", ai.npc.Name(),
		"objectID", ai.npc.ObjectID(),
		"home", ai.Home(),
		"navmesh", pathing.IsSupported(ai.owner, ai.paths))
}

// Stop stops AI controller
func (ai *RoamingAI) Stop() {
	ai.isRunning.Store(false)
	ai.calc.Clear()
	ai.SetIntention(model.IntentionIdle)
	slog.Debug("roaming AI stopped",
		"npc", ai.npc.Name(),
		"objectID", ai.npc.ObjectID())
}

// SetIntention sets AI intention
func (ai *RoamingAI) SetIntention(intention model.Intention) {
	old := ai.npc.Intention()
	ai.npc.SetIntention(intention)

	if old != intention && IsDebugEnabled() {
		slog.Debug("AI intention changed",
			"npc", ai.npc.Name(),
			"objectID", ai.npc.ObjectID(),
			"from", old,
			"to", intention)
	}
}

// CurrentIntention returns current AI intention
func (ai *RoamingAI) CurrentIntention() model.Intention {
	return ai.npc.Intention()
}

// Home returns the spawn point after mesh snapping.
func (ai *RoamingAI) Home() pathing.Point3D {
	ai.mu.Lock()
	defer ai.mu.Unlock()
	return ai.home
}

// Target returns the current movement target.
func (ai *RoamingAI) Target() (pathing.Point3D, bool) {
	ai.mu.Lock()
	defer ai.mu.Unlock()
	return ai.target, ai.hasTarget
}

// LastNoPath returns the reason the last movement was abandoned.
func (ai *RoamingAI) LastNoPath() pathing.NoPathReason {
	ai.mu.Lock()
	defer ai.mu.Unlock()
	return ai.lastNoPath
}

// MoveTo sends the NPC to target.
func (ai *RoamingAI) MoveTo(target pathing.Point3D) {
	ai.setTarget(target)
	ai.SetIntention(model.IntentionMoveTo)
}

// Tick performs one AI step.
func (ai *RoamingAI) Tick() {
	if !ai.isRunning.Load() {
		return
	}

	switch ai.CurrentIntention() {
	case model.IntentionIdle:
		ai.tickIdle()
	case model.IntentionRoam, model.IntentionMoveTo, model.IntentionReturn:
		ai.tickMove()
	}
}

func (ai *RoamingAI) tickIdle() {
	spawn := ai.npc.Spawn()
	pos := ai.owner.Position()
	home := ai.Home()

	// pushed or teleported too far away
	if spawn.RoamRange > 0 && !pos.WithinRadius(home, 2*spawn.RoamRange) {
		ai.setTarget(home)
		ai.SetIntention(model.IntentionReturn)
		return
	}
	if spawn.RoamRange <= 0 {
		return
	}

	ai.mu.Lock()
	due := !ai.now().Before(ai.nextRoam)
	ai.mu.Unlock()
	if !due {
		return
	}

	ai.setTarget(ai.pickRoamTarget(home, spawn.RoamRange))
	ai.SetIntention(model.IntentionRoam)
}

func (ai *RoamingAI) tickMove() {
	target, ok := ai.Target()
	if !ok {
		ai.arrive()
		return
	}

	// Walk straight when no path is needed or the waypoints ran out.
	waypoint := target
	next, found, reason := ai.calc.CalculateNextTarget(target)
	switch {
	case found:
		waypoint = next
	case reason == pathing.RecastFoundNoPath:
		if IsDebugEnabled() {
			slog.Debug("no path to target",
				"npc", ai.npc.Name(),
				"objectID", ai.npc.ObjectID(),
				"target", target,
				"reason", reason)
		}
		ai.mu.Lock()
		ai.lastNoPath = reason
		ai.mu.Unlock()
		ai.arrive()
		return
	}

	step := ai.stepLength()
	pos := ai.owner.Position()
	moved := moveToward(pos, waypoint, step)
	loc := ai.npc.Location().WithCoordinates(moved.X, moved.Y, moved.Z)
	ai.npc.SetLocation(loc)

	if found && IsDebugEnabled() {
		slog.Debug("following waypoint",
			"npc", ai.npc.Name(),
			"objectID", ai.npc.ObjectID(),
			"waypoint", waypoint,
			"remaining", len(ai.calc.PendingNodes()))
	}

	if moved == target {
		ai.arrive()
	}
}

// arrive ends the current movement and schedules the next roam.
func (ai *RoamingAI) arrive() {
	ai.calc.Clear()
	ai.mu.Lock()
	ai.hasTarget = false
	ai.nextRoam = ai.now().Add(ai.pause())
	ai.mu.Unlock()
	ai.SetIntention(model.IntentionIdle)
}

func (ai *RoamingAI) setTarget(target pathing.Point3D) {
	ai.mu.Lock()
	ai.target = target
	ai.hasTarget = true
	ai.lastNoPath = pathing.NoProblem
	ai.mu.Unlock()
	ai.calc.SetForceReplot(true)
}

// snapHome moves the spawn point onto the closest walkable polygon.
func (ai *RoamingAI) snapHome() {
	if ai.npc.IsFlying() {
		return
	}
	zone := ai.owner.CurrentZone()
	if zone == nil {
		return
	}

	ai.mu.Lock()
	home := ai.home
	ai.mu.Unlock()

	r := ai.cfg.SnapRange
	v, ok := ai.paths.GetClosestPoint(zone, home.Vector(), r, r, r)
	if !ok {
		slog.Warn("spawn point is off the navmesh",
			"npc", ai.npc.Name(),
			"objectID", ai.npc.ObjectID(),
			"zone", zone.ID(),
			"x", home.X, "y", home.Y, "z", home.Z)
		return
	}

	snapped := v.Point()
	ai.mu.Lock()
	ai.home = snapped
	ai.mu.Unlock()
	ai.npc.SetLocation(ai.npc.Location().WithCoordinates(snapped.X, snapped.Y, snapped.Z))
}

// pickRoamTarget returns a random point within radius of home, on the
// navmesh when one is loaded.
func (ai *RoamingAI) pickRoamTarget(home pathing.Point3D, radius int32) pathing.Point3D {
	if !ai.npc.IsFlying() {
		if zone := ai.owner.CurrentZone(); zone != nil {
			if v, ok := ai.paths.GetRandomPoint(zone, home, float32(radius)); ok {
				return v.Point()
			}
		}
	}

	ai.mu.Lock()
	angle := ai.rng.Float64() * 2 * math.Pi
	dist := ai.rng.Float64() * float64(radius)
	ai.mu.Unlock()

	return pathing.Point3D{
		X: home.X + int32(math.Round(math.Cos(angle)*dist)),
		Y: home.Y + int32(math.Round(math.Sin(angle)*dist)),
		Z: home.Z,
	}
}

// pause returns a random idle time. Caller holds ai.mu.
func (ai *RoamingAI) pause() time.Duration {
	span := ai.cfg.PauseMax - ai.cfg.PauseMin
	if span <= 0 {
		return ai.cfg.PauseMin
	}
	return ai.cfg.PauseMin + time.Duration(ai.rng.Int64N(int64(span)))
}

func (ai *RoamingAI) stepLength() float64 {
	step := float64(ai.npc.Speed()) * ai.cfg.TickInterval.Seconds()
	return math.Max(step, 1)
}

// moveToward returns the point at most step units from pos on the
// segment to dest.
func moveToward(pos, dest pathing.Point3D, step float64) pathing.Point3D {
	dist := pos.Distance(dest)
	if dist <= step {
		return dest
	}
	k := step / dist
	return pathing.Point3D{
		X: pos.X + int32(math.Round(float64(dest.X-pos.X)*k)),
		Y: pos.Y + int32(math.Round(float64(dest.Y-pos.Y)*k)),
		Z: pos.Z + int32(math.Round(float64(dest.Z-pos.Z)*k)),
	}
}
