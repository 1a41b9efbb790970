// Package store records solar position samples in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/devskill-org/sunclock/report"
	"github.com/devskill-org/sunclock/solar"
	_ "github.com/lib/pq"
	"golang.org/x/time/rate"
)

// DB is the subset of *sql.DB used by a Recorder.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Sample is one recorded solar position.
type Sample struct {
	Timestamp time.Time
	DeviceID  int
	Latitude  float64
	Longitude float64
	Elevation float64
	Azimuth   float64
	DayPart   solar.DayPart
}

// Recorder writes samples, at most one per interval, to the solar_samples
// table.
type Recorder struct {
	db       DB
	deviceID int
	limiter  *rate.Limiter
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, connString string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// NewRecorder returns a Recorder that keeps at most one sample per interval.
func NewRecorder(db DB, deviceID int, interval time.Duration) *Recorder {
	return &Recorder{
		db:       db,
		deviceID: deviceID,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
	}
}

// EnsureSchema creates the solar_samples table if it does not exist.
func (r *Recorder) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return fmt.Errorf("database connection not available")
	}
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS solar_samples (
			timestamp TIMESTAMPTZ NOT NULL,
			device_id INTEGER NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			elevation DOUBLE PRECISION NOT NULL,
			azimuth DOUBLE PRECISION NOT NULL,
			day_part SMALLINT NOT NULL,
			PRIMARY KEY (timestamp, device_id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create solar_samples table: %w", err)
	}
	return nil
}

// Publish implements watch.Sink. Reports arriving sooner than the interval
// after the previous recorded one are skipped.
func (r *Recorder) Publish(ctx context.Context, rep *report.PollReport) error {
	if !r.limiter.AllowN(rep.Time, 1) {
		return nil
	}
	return r.Record(ctx, Sample{
		Timestamp: rep.Time,
		DeviceID:  r.deviceID,
		Latitude:  rep.Coordinates.Latitude.Degrees(),
		Longitude: rep.Coordinates.Longitude.Degrees(),
		Elevation: rep.Elevation,
		Azimuth:   rep.Azimuth,
		DayPart:   rep.DayPart,
	})
}

// Record inserts or replaces a sample.
func (r *Recorder) Record(ctx context.Context, s Sample) error {
	if r.db == nil {
		return fmt.Errorf("database connection not available")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO solar_samples (
			timestamp,
			device_id,
			latitude,
			longitude,
			elevation,
			azimuth,
			day_part
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (timestamp, device_id) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			elevation = EXCLUDED.elevation,
			azimuth = EXCLUDED.azimuth,
			day_part = EXCLUDED.day_part
	`,
		s.Timestamp.UTC(),
		s.DeviceID,
		s.Latitude,
		s.Longitude,
		s.Elevation,
		s.Azimuth,
		int(s.DayPart),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sample at %s: %w", s.Timestamp.Format(time.RFC3339), err)
	}
	return nil
}

// Samples returns the samples of the recorder's device in [from, to),
// oldest first.
func (r *Recorder) Samples(ctx context.Context, from, to time.Time) ([]Sample, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database connection not available")
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT timestamp, device_id, latitude, longitude, elevation, azimuth, day_part
		FROM solar_samples
		WHERE device_id = $1 AND timestamp >= $2 AND timestamp < $3
		ORDER BY timestamp ASC
	`, r.deviceID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		var part int
		if err := rows.Scan(&s.Timestamp, &s.DeviceID, &s.Latitude, &s.Longitude, &s.Elevation, &s.Azimuth, &part); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		s.DayPart = solar.DayPart(part)
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating samples: %w", err)
	}
	return samples, nil
}
