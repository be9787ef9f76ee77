package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/dolgo/internal/ai"
	"github.com/udisondev/dolgo/internal/config"
	"github.com/udisondev/dolgo/internal/db"
	"github.com/udisondev/dolgo/internal/game/pathing"
	"github.com/udisondev/dolgo/internal/game/zone"
	"github.com/udisondev/dolgo/internal/model"
	"github.com/udisondev/dolgo/internal/world"
)

const GameConfigPath = "config/gameserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := GameConfigPath
	if p := os.Getenv("DOLNAV_GAME_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadGameServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading game config: %w", err)
	}

	logLevel := parseLogLevel(cfg.Log.Level)
	handler, closeLog := newLogHandler(cfg.Log, logLevel)
	defer closeLog()
	slog.SetDefault(slog.New(handler))

	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("game server starting",
		"config", cfgPath,
		"log_level", cfg.Log.Level,
		"pathing", cfg.Pathing.Enabled)

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	zones, err := db.NewZoneRepository(database.Pool()).LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading zones: %w", err)
	}
	zoneMgr := zone.NewManager()
	if err := zoneMgr.Init(zones); err != nil {
		return err
	}

	var local *pathing.LocalManager
	if cfg.Pathing.Enabled {
		local = pathing.NewLocalManager(pathing.LocalConfig{
			LibraryPath:   cfg.Pathing.LibraryPath,
			NavMeshDir:    cfg.Pathing.NavMeshDir,
			LoaderWorkers: cfg.Pathing.LoaderWorkers,
		}, nil)
	}
	paths := pathing.NewFacade(local)
	native, err := paths.Init(ctx, zoneMgr.PathingZones())
	if err != nil {
		return fmt.Errorf("initializing pathing: %w", err)
	}
	defer stopPathing(paths)
	if native {
		logNavMeshes(local)
	}

	spawns, err := db.NewSpawnRepository(database.Pool()).LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading spawns: %w", err)
	}

	tickMgr := ai.NewTickManager(cfg.AI.TickInterval)
	roamCfg := ai.RoamConfig{
		TickInterval: tickMgr.Interval(),
		PauseMin:     cfg.AI.RoamPauseMin,
		PauseMax:     cfg.AI.RoamPauseMax,
		SnapRange:    cfg.AI.SpawnSnapDist,
	}
	ids := world.NewObjectIDGenerator()
	w := world.New()
	for _, s := range spawns {
		npc := model.NewNpc(ids.NextNpcID(), *s)
		if err := w.AddNpc(npc); err != nil {
			return err
		}
		tickMgr.Register(npc.ObjectID(), ai.NewRoamingAI(npc, zoneMgr, paths, roamCfg))
	}
	defer tickMgr.StopAll()

	slog.Info("world loaded",
		"zones", len(zones),
		"npcs", w.NpcCount(),
		"controllers", tickMgr.Count(),
		"native_pathing", native)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := tickMgr.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("AI tick manager: %w", err)
		}
		return nil
	})

	// SIGHUP reloads navmeshes changed on disk.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				reloadNavMeshes(paths, zoneMgr)
			}
		}
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func reloadNavMeshes(paths *pathing.Facade, zones *zone.Manager) {
	local := paths.Local()
	if local == nil || !local.IsAvailable() {
		slog.Warn("navmesh reload requested but native pathing is not active")
		return
	}
	n, err := local.ReloadChanged(zones.PathingZones())
	if err != nil {
		slog.Error("navmesh reload finished with errors", "reloaded", n, "err", err)
		return
	}
	slog.Info("navmesh reload finished", "reloaded", n)
	logNavMeshes(local)
}

func logNavMeshes(local *pathing.LocalManager) {
	for _, m := range local.Meshes() {
		slog.Info("navmesh",
			"zone", m.ZoneID,
			"file", m.Path,
			"generation", m.Generation,
			"digest", m.Digest[:16],
			"queries", m.Queries,
			"loaded_at", m.LoadedAt.Format(time.RFC3339))
	}
}

func stopPathing(paths *pathing.Facade) {
	if local := paths.Local(); local != nil {
		st := local.Stats()
		slog.Info("pathing stats",
			"path_queries", st.PathQueries,
			"random_queries", st.RandomQueries,
			"closest_queries", st.ClosestQueries,
			"failed", st.Failed,
			"malformed", st.MalformedResults)
	}
	paths.Stop()
	slog.Info("pathing stopped")
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
