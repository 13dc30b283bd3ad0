package stations

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/countdown/pkg/ctdf"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore keeps stops in a single local SQLite file, one connection so writes never overlap
type SQLiteStore struct {
	conn *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Info().Str("path", path).Msg("Connected to stations database")

	return &SQLiteStore{conn: conn}, nil
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) HasStations(ctx context.Context) (bool, error) {
	var count int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM stops WHERE category = ?`, recordCategoryStation,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count stations: %w", err)
	}

	return count > 0, nil
}

func (s *SQLiteStore) ImportStations(ctx context.Context, path string) (int, error) {
	records, err := ParseStationsFile(path)
	if err != nil {
		return 0, err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stops (code, name, latitude, longitude, kind, category)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			kind = excluded.kind,
			category = excluded.category`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, record := range records {
		_, err := stmt.ExecContext(ctx, record.Code, record.Name, record.Latitude, record.Longitude, int(ctdf.StopKindNone), recordCategoryStation)
		if err != nil {
			return 0, fmt.Errorf("insert station %s: %w", record.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	log.Info().Int("stations", len(records)).Str("path", path).Msg("Imported stations")

	return len(records), nil
}

func (s *SQLiteStore) AddStop(ctx context.Context, stop ctdf.Stop) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO stops (code, name, towards, indicator, latitude, longitude, kind, category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			towards = excluded.towards,
			indicator = excluded.indicator,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			kind = excluded.kind`,
		stop.ID, stop.Name, stop.Towards, stop.Indicator, stop.Latitude, stop.Longitude, int(stop.Kind), recordCategoryStop,
	)
	if err != nil {
		return fmt.Errorf("add stop %s: %w", stop.ID, err)
	}

	return nil
}

func (s *SQLiteStore) SetFavourite(ctx context.Context, code string, favourite bool) error {
	value := 0
	if favourite {
		value = 1
	}

	result, err := s.conn.ExecContext(ctx, `UPDATE stops SET favourite = ? WHERE code = ?`, value, code)
	if err != nil {
		return fmt.Errorf("set favourite %s: %w", code, err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *SQLiteStore) IsFavourite(ctx context.Context, code string) (bool, error) {
	var favourite int
	err := s.conn.QueryRowContext(ctx, `SELECT favourite FROM stops WHERE code = ?`, code).Scan(&favourite)
	if err == sql.ErrNoRows {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("is favourite %s: %w", code, err)
	}

	return favourite == 1, nil
}

func (s *SQLiteStore) QueryStops(ctx context.Context, category Category) ([]ctdf.Stop, error) {
	query := `SELECT code, name, towards, indicator, latitude, longitude, kind, favourite FROM stops`
	var args []any

	switch category {
	case CategoryBus:
		query += ` WHERE category = ? AND kind = ?`
		args = append(args, recordCategoryStop, int(ctdf.StopKindBus))
	case CategoryRiver:
		query += ` WHERE category = ? AND kind = ?`
		args = append(args, recordCategoryStop, int(ctdf.StopKindRiver))
	case CategoryStation:
		query += ` WHERE category = ?`
		args = append(args, recordCategoryStation)
	case CategoryFavourite:
		query += ` WHERE favourite = 1`
	}
	query += ` ORDER BY name, code`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stops: %w", err)
	}
	defer rows.Close()

	stops := []ctdf.Stop{}
	for rows.Next() {
		var stop ctdf.Stop
		var kind, favourite int

		if err := rows.Scan(&stop.ID, &stop.Name, &stop.Towards, &stop.Indicator, &stop.Latitude, &stop.Longitude, &kind, &favourite); err != nil {
			return nil, err
		}

		stop.Kind = ctdf.StopKind(kind)
		stop.Favourite = favourite == 1
		stops = append(stops, stop)
	}

	return stops, rows.Err()
}
