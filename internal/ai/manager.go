package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTickInterval is used when NewTickManager gets a non-positive interval.
const DefaultTickInterval = time.Second

// TickManager manages AI ticks for all registered NPCs
type TickManager struct {
	controllers     sync.Map // objectID → Controller
	interval        time.Duration
	stopCh          chan struct{}
	stopOnce        sync.Once
	controllerCount atomic.Int32
	ticks           atomic.Uint64
}

// NewTickManager creates new AI tick manager
func NewTickManager(interval time.Duration) *TickManager {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &TickManager{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Interval returns the tick period.
func (m *TickManager) Interval() time.Duration { return m.interval }

// Register registers AI controller for NPC. A controller already
// registered under objectID is stopped and replaced.
func (m *TickManager) Register(objectID uint32, controller Controller) {
	if prev, loaded := m.controllers.Swap(objectID, controller); loaded {
		prev.(Controller).Stop()
	} else {
		m.controllerCount.Add(1)
	}
	controller.Start()

	slog.Debug("AI controller registered",
		"objectID", objectID,
		"intention", controller.CurrentIntention())
}

// Unregister unregisters AI controller
func (m *TickManager) Unregister(objectID uint32) {
	value, ok := m.controllers.LoadAndDelete(objectID)
	if !ok {
		return
	}

	m.controllerCount.Add(-1)

	controller := value.(Controller)
	controller.Stop()

	slog.Debug("AI controller unregistered", "objectID", objectID)
}

// Start starts AI tick loop (blocks until context is canceled or Stop is called)
func (m *TickManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("AI tick manager started", "interval", m.interval, "controllers", m.Count())

	for {
		select {
		case <-ctx.Done():
			slog.Info("AI tick manager stopping", "ticks", m.ticks.Load())
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("AI tick manager stopped", "ticks", m.ticks.Load())
			return nil

		case <-ticker.C:
			m.tickAll()
		}
	}
}

// Stop stops AI tick loop. Safe to call more than once.
func (m *TickManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// tickAll ticks all registered controllers
func (m *TickManager) tickAll() {
	count := 0

	m.controllers.Range(func(key, value any) bool {
		controller := value.(Controller)
		controller.Tick()
		count++
		return true
	})
	m.ticks.Add(1)

	if count > 0 && IsDebugEnabled() {
		slog.Debug("AI tick completed", "controllers", count)
	}
}

// Count returns number of registered controllers.
func (m *TickManager) Count() int {
	return int(m.controllerCount.Load())
}

// Ticks returns the number of completed tick rounds.
func (m *TickManager) Ticks() uint64 {
	return m.ticks.Load()
}

// StopAll unregisters and stops every controller.
func (m *TickManager) StopAll() {
	m.controllers.Range(func(key, _ any) bool {
		m.Unregister(key.(uint32))
		return true
	})
}

// GetController returns controller for NPC
func (m *TickManager) GetController(objectID uint32) (Controller, error) {
	value, ok := m.controllers.Load(objectID)
	if !ok {
		return nil, fmt.Errorf("controller not found for objectID %d", objectID)
	}
	return value.(Controller), nil
}
