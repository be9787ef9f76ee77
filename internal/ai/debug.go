package ai

import "sync/atomic"

// debugLoggingEnabled gates per-tick debug logs (intention changes, waypoints).
// Set once from main based on the configured log level.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables per-tick AI debug logging.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if debug logging is enabled.
// Use this to guard debug log calls on the tick path:
//
//	if ai.IsDebugEnabled() {
//	    slog.Debug("waypoint", "npc", npc.Name(), "next", next)
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
