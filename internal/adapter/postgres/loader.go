package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/storm-track-ingest/internal/atcf"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `CREATE TABLE IF NOT EXISTS atcf_records (
    id BIGSERIAL PRIMARY KEY,
    storm_id TEXT NOT NULL,
    basin TEXT NOT NULL,
    storm_number TEXT NOT NULL,
    record_type TEXT NOT NULL,
    datetime TIMESTAMPTZ NOT NULL,
    latitude DOUBLE PRECISION NOT NULL,
    longitude DOUBLE PRECISION NOT NULL,
    max_sustained_wind_speed INTEGER,
    central_pressure INTEGER,
    development_level TEXT,
    isotach INTEGER NOT NULL,
    quadrant TEXT,
    radius_for_neq INTEGER,
    radius_for_seq INTEGER,
    radius_for_swq INTEGER,
    radius_for_nwq INTEGER,
    background_pressure INTEGER,
    radius_of_last_closed_isobar INTEGER,
    radius_of_maximum_winds INTEGER,
    direction INTEGER,
    speed INTEGER,
    name TEXT,
    UNIQUE (storm_id, record_type, datetime, isotach)
)`

const insertRecord = `INSERT INTO atcf_records (
    storm_id, basin, storm_number, record_type, datetime,
    latitude, longitude, max_sustained_wind_speed, central_pressure,
    development_level, isotach, quadrant,
    radius_for_neq, radius_for_seq, radius_for_swq, radius_for_nwq,
    background_pressure, radius_of_last_closed_isobar, radius_of_maximum_winds,
    direction, speed, name
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
ON CONFLICT (storm_id, record_type, datetime, isotach) DO NOTHING`

// Loader persists decoded advisory records into Postgres.
// It implements pipeline.Loader.
type Loader struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewLoader opens a connection pool and creates the records table if it does
// not exist yet.
func NewLoader(ctx context.Context, dsn string, logger *slog.Logger) (*Loader, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Loader{pool: pool, logger: logger}, nil
}

// LoadBatch inserts a storm's records in a single batch round trip. Rows that
// already exist for the same advisory identity are skipped.
func (l *Loader) LoadBatch(ctx context.Context, stormID string, records atcf.Table) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(insertRecord,
			stormID, rec.Basin, rec.StormNumber, rec.RecordType, rec.Datetime,
			rec.Latitude, rec.Longitude, rec.MaxSustainedWindSpeed, rec.CentralPressure,
			rec.DevelopmentLevel, rec.Isotach, rec.Quadrant,
			rec.RadiusNEQ, rec.RadiusSEQ, rec.RadiusSWQ, rec.RadiusNWQ,
			rec.BackgroundPressure, rec.RadiusOfLastClosedIsobar, rec.RadiusOfMaximumWinds,
			rec.Direction, rec.Speed, rec.Name,
		)
	}

	br := l.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert advisory record: %w", err)
		}
	}
	return nil
}

func (l *Loader) Close() error {
	l.pool.Close()
	return nil
}
