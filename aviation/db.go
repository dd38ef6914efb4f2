// aviation/db.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cifpnav/cifpnav/log"
	"github.com/cifpnav/cifpnav/math"

	_ "modernc.org/sqlite"
)

///////////////////////////////////////////////////////////////////////////
// ProcedureDB

// ProcedureDB stores waypoints and procedure records in a sqlite
// database. It implements ProcedureSource.
type ProcedureDB struct {
	db *sql.DB
	lg *log.Logger
}

// OpenProcedureDB opens (creating if necessary) the database at the given
// path; ":memory:" gives a private in-memory database.
func OpenProcedureDB(path string, lg *log.Logger) (*ProcedureDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	// sqlite serializes writers anyway, and a single connection keeps an
	// in-memory database from being one database per connection.
	db.SetMaxOpenConns(1)

	p := &ProcedureDB{db: db, lg: lg}
	if err := p.initDB(); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *ProcedureDB) initDB() error {
	_, err := p.db.Exec(`
		CREATE TABLE IF NOT EXISTS waypoints (
			ident TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			elevation REAL NOT NULL DEFAULT 0,
			magvar REAL NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create waypoints table: %w", err)
	}

	_, err = p.db.Exec(`
		CREATE TABLE IF NOT EXISTS procedures (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			airport TEXT NOT NULL,
			approach TEXT NOT NULL,
			segment TEXT NOT NULL,
			legs TEXT NOT NULL,
			UNIQUE (airport, approach, segment)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create procedures table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_procedures_airport ON procedures(airport)`,
		`CREATE INDEX IF NOT EXISTS idx_waypoints_type ON waypoints(type)`,
	}
	for _, indexSQL := range indexes {
		if _, err := p.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func (p *ProcedureDB) Close() error {
	return p.db.Close()
}

// Import stores the contents of the dataset, replacing any existing
// waypoints and records with the same keys. It is all-or-nothing.
func (p *ProcedureDB) Import(ctx context.Context, ds *Dataset) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, wp := range ds.Waypoints {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO waypoints (ident, type, latitude, longitude, elevation, magvar)
			VALUES (?, ?, ?, ?, ?, ?)`,
			wp.Ident, wp.Type.String(), wp.Location.Latitude(), wp.Location.Longitude(),
			wp.Elevation, wp.MagneticVariation); err != nil {
			return fmt.Errorf("failed to insert waypoint %s: %w", wp.Ident, err)
		}
	}

	for _, r := range ds.Procedures {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO procedures (airport, approach, segment, legs) VALUES (?, ?, ?, ?)
			ON CONFLICT (airport, approach, segment) DO UPDATE SET legs = excluded.legs`,
			r.Airport, r.Approach, r.Segment, r.Legs); err != nil {
			return fmt.Errorf("failed to insert procedure %s/%s/%s: %w", r.Airport, r.Approach, r.Segment, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	p.lg.Info("imported procedures", "waypoints", len(ds.Waypoints), "records", len(ds.Procedures))
	return nil
}

func (p *ProcedureDB) Airports(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT DISTINCT airport FROM procedures ORDER BY airport`)
	if err != nil {
		return nil, fmt.Errorf("failed to query airports: %w", err)
	}
	defer rows.Close()

	var ap []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		ap = append(ap, a)
	}
	return ap, rows.Err()
}

func (p *ProcedureDB) Records(ctx context.Context, airport string) ([]ProcedureRecord, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT airport, approach, segment, legs FROM procedures WHERE airport = ? ORDER BY id`, airport)
	if err != nil {
		return nil, fmt.Errorf("failed to query procedures for %s: %w", airport, err)
	}
	defer rows.Close()

	var recs []ProcedureRecord
	for rows.Next() {
		var r ProcedureRecord
		if err := rows.Scan(&r.Airport, &r.Approach, &r.Segment, &r.Legs); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%s: %w", airport, ErrUnknownAirport)
	}
	return recs, nil
}

func (p *ProcedureDB) FindWaypoint(ident string) (Waypoint, bool) {
	wp, err := p.findWaypoint(context.Background(), ident)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			p.lg.Errorf("%s: %v", ident, err)
		}
		return Waypoint{}, false
	}
	return wp, true
}

func (p *ProcedureDB) findWaypoint(ctx context.Context, ident string) (Waypoint, error) {
	var typ string
	var lat, long float64
	wp := Waypoint{Ident: ident}
	err := p.db.QueryRowContext(ctx,
		`SELECT type, latitude, longitude, elevation, magvar FROM waypoints WHERE ident = ?`, ident).
		Scan(&typ, &lat, &long, &wp.Elevation, &wp.MagneticVariation)
	if err != nil {
		return Waypoint{}, err
	}
	wp.Type, _ = ParseWaypointType(typ)
	wp.Location = math.Point2LL{float32(long), float32(lat)}
	return wp, nil
}

// Export returns everything in the database as a Dataset, e.g. for
// writing a bundle.
func (p *ProcedureDB) Export(ctx context.Context) (*Dataset, error) {
	ds := NewDataset()

	rows, err := p.db.QueryContext(ctx, `SELECT ident FROM waypoints`)
	if err != nil {
		return nil, fmt.Errorf("failed to query waypoints: %w", err)
	}
	var idents []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		idents = append(idents, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, id := range idents {
		wp, err := p.findWaypoint(ctx, id)
		if err != nil {
			return nil, err
		}
		ds.Waypoints[id] = wp
	}

	airports, err := p.Airports(ctx)
	if err != nil {
		return nil, err
	}
	for _, ap := range airports {
		recs, err := p.Records(ctx, ap)
		if err != nil {
			return nil, err
		}
		ds.Procedures = append(ds.Procedures, recs...)
	}
	return ds, nil
}
