package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/udisondev/dolgo/internal/game/zone"
)

// ZoneRepository loads zone definitions.
type ZoneRepository struct {
	pool *pgxpool.Pool
}

// NewZoneRepository creates a new zone repository
func NewZoneRepository(pool *pgxpool.Pool) *ZoneRepository {
	return &ZoneRepository{pool: pool}
}

// LoadAll loads all zones ordered by id.
func (r *ZoneRepository) LoadAll(ctx context.Context) ([]*zone.Zone, error) {
	query := `
		SELECT zone_id, name, region_id, min_x, min_y, max_x, max_y, pathing_allowed
		FROM zones
		ORDER BY zone_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading all zones: %w", err)
	}
	defer rows.Close()

	zones := make([]*zone.Zone, 0, 64)

	for rows.Next() {
		var (
			zoneID, regionID       int32
			name                   string
			minX, minY, maxX, maxY int32
			pathingAllowed         bool
		)

		if err := rows.Scan(&zoneID, &name, &regionID, &minX, &minY, &maxX, &maxY, &pathingAllowed); err != nil {
			return nil, fmt.Errorf("scanning zone row: %w", err)
		}

		zones = append(zones, zone.New(uint16(zoneID), name, uint16(regionID), minX, minY, maxX, maxY, pathingAllowed))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating zone rows: %w", err)
	}

	return zones, nil
}

// Create inserts a zone.
func (r *ZoneRepository) Create(ctx context.Context, z *zone.Zone) error {
	minX, minY, maxX, maxY := z.Bounds()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO zones (zone_id, name, region_id, min_x, min_y, max_x, max_y, pathing_allowed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, int32(z.ID()), z.Name(), int32(z.RegionID()), minX, minY, maxX, maxY, z.PathingAllowed())
	if err != nil {
		return fmt.Errorf("creating zone %d: %w", z.ID(), err)
	}
	return nil
}
