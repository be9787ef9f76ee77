package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/udisondev/dolgo/internal/model"
)

// ErrSpawnNotFound is returned by LoadByID for an unknown spawn.
var ErrSpawnNotFound = errors.New("spawn not found")

const spawnColumns = `spawn_id, name, region_id, x, y, z, heading, roam_range, flying, speed`

// SpawnRepository handles spawn CRUD operations
type SpawnRepository struct {
	pool *pgxpool.Pool
}

// NewSpawnRepository creates a new spawn repository
func NewSpawnRepository(pool *pgxpool.Pool) *SpawnRepository {
	return &SpawnRepository{pool: pool}
}

// LoadAll loads all spawns from database
func (r *SpawnRepository) LoadAll(ctx context.Context) ([]*model.Spawn, error) {
	query := `SELECT ` + spawnColumns + ` FROM npc_spawns ORDER BY spawn_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading all spawns: %w", err)
	}
	defer rows.Close()

	spawns := make([]*model.Spawn, 0, 50)

	for rows.Next() {
		s, err := scanSpawn(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning spawn row: %w", err)
		}
		spawns = append(spawns, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spawn rows: %w", err)
	}

	return spawns, nil
}

// LoadByID loads spawn by ID
func (r *SpawnRepository) LoadByID(ctx context.Context, spawnID int64) (*model.Spawn, error) {
	query := `SELECT ` + spawnColumns + ` FROM npc_spawns WHERE spawn_id = $1`

	s, err := scanSpawn(r.pool.QueryRow(ctx, query, spawnID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("spawn %d: %w", spawnID, ErrSpawnNotFound)
		}
		return nil, fmt.Errorf("loading spawn %d: %w", spawnID, err)
	}
	return s, nil
}

// Create inserts a spawn and sets its SpawnID.
func (r *SpawnRepository) Create(ctx context.Context, s *model.Spawn) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO npc_spawns (name, region_id, x, y, z, heading, roam_range, flying, speed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING spawn_id
	`, s.Name, int32(s.RegionID), s.Location.X, s.Location.Y, s.Location.Z,
		int32(s.Location.Heading), s.RoamRange, s.Flying, s.Speed,
	).Scan(&s.SpawnID)
	if err != nil {
		return fmt.Errorf("creating spawn %q: %w", s.Name, err)
	}
	return nil
}

func scanSpawn(row pgx.Row) (*model.Spawn, error) {
	var (
		s                 model.Spawn
		regionID, heading int32
		x, y, z           int32
	)
	if err := row.Scan(&s.SpawnID, &s.Name, &regionID, &x, &y, &z, &heading, &s.RoamRange, &s.Flying, &s.Speed); err != nil {
		return nil, err
	}
	s.RegionID = uint16(regionID)
	s.Location = model.NewLocation(x, y, z, uint16(heading))
	return &s, nil
}
