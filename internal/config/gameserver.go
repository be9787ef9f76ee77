package config

import (
	"fmt"
	"time"
)

// Pathing holds navmesh settings.
type Pathing struct {
	Enabled       bool   `yaml:"enabled"`
	LibraryPath   string `yaml:"library_path"`   // empty = platform default under lib/
	NavMeshDir    string `yaml:"navmesh_dir"`    // zoneNNN.nav files
	LoaderWorkers int    `yaml:"loader_workers"` // concurrent mesh loads at startup
}

// AI holds NPC tick settings.
type AI struct {
	TickInterval  time.Duration `yaml:"tick_interval"`
	RoamPauseMin  time.Duration `yaml:"roam_pause_min"`
	RoamPauseMax  time.Duration `yaml:"roam_pause_max"`
	SpawnSnapDist float32       `yaml:"spawn_snap_dist"` // closest point search range
}

// GameServer holds all configuration for the game server.
type GameServer struct {
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Pathing  Pathing        `yaml:"pathing"`
	AI       AI             `yaml:"ai"`
}

// DefaultGameServer returns GameServer config with sensible defaults.
func DefaultGameServer() GameServer {
	return GameServer{
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "dolgo",
			Password: "dolgo",
			DBName:   "dolgo",
			SSLMode:  "disable",
		},
		Pathing: Pathing{
			Enabled:       true,
			NavMeshDir:    "pathing",
			LoaderWorkers: 4,
		},
		AI: AI{
			TickInterval:  500 * time.Millisecond,
			RoamPauseMin:  5 * time.Second,
			RoamPauseMax:  20 * time.Second,
			SpawnSnapDist: 256,
		},
	}
}

// Validate checks values that would break the server at runtime.
func (c GameServer) Validate() error {
	if c.AI.TickInterval <= 0 {
		return fmt.Errorf("ai.tick_interval must be positive, got %s", c.AI.TickInterval)
	}
	if c.AI.RoamPauseMax < c.AI.RoamPauseMin {
		return fmt.Errorf("ai.roam_pause_max (%s) < ai.roam_pause_min (%s)", c.AI.RoamPauseMax, c.AI.RoamPauseMin)
	}
	if c.Pathing.LoaderWorkers < 0 {
		return fmt.Errorf("pathing.loader_workers must not be negative, got %d", c.Pathing.LoaderWorkers)
	}
	return nil
}

// LoadGameServer loads game server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadGameServer(path string) (GameServer, error) {
	cfg := DefaultGameServer()
	if err := loadYAML(path, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
