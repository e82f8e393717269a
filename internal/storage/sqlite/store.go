package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/probeworks/slaq/internal/storage"
)

// Store implements storage.IndicatorStore using SQLite
type Store struct {
	db *sql.DB
}

// NewStore opens the database and runs the idempotent schema bootstrap.
// Bootstrap failure here is the one unrecoverable condition: the caller is
// expected to terminate, since no subsequent work can be trusted to persist.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Serialize concurrent writers instead of failing with SQLITE_BUSY
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Append writes one indicator record
func (s *Store) Append(ctx context.Context, rec storage.IndicatorRecord) error {
	query := `
		INSERT INTO indicators (timestamp, name, slo_target, sli_value, is_bad, period, data_quality)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.Timestamp,
		rec.Name,
		rec.SLOTarget,
		rec.SLIValue,
		rec.IsBad,
		rec.Period,
		rec.DataQuality,
	)
	if err != nil {
		return fmt.Errorf("failed to append indicator: %w", err)
	}

	return nil
}

// Records retrieves persisted records with optional filtering
func (s *Store) Records(ctx context.Context, filter storage.RecordFilter) ([]storage.StoredRecord, error) {
	query := `
		SELECT id, timestamp, name, slo_target, sli_value, is_bad, period, data_quality, created_at
		FROM indicators
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.Name != "" {
		query += " AND name = ?"
		args = append(args, filter.Name)
	}

	if filter.OnlyBad {
		query += " AND is_bad = 1"
	}

	if filter.StartTime != nil {
		query += " AND timestamp >= ?"
		args = append(args, filter.StartTime)
	}

	if filter.EndTime != nil {
		query += " AND timestamp <= ?"
		args = append(args, filter.EndTime)
	}

	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	} else {
		query += " LIMIT 100" // Default limit
	}

	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query indicators: %w", err)
	}
	defer rows.Close()

	var records []storage.StoredRecord
	for rows.Next() {
		var record storage.StoredRecord

		err := rows.Scan(
			&record.ID,
			&record.Timestamp,
			&record.Name,
			&record.SLOTarget,
			&record.SLIValue,
			&record.IsBad,
			&record.Period,
			&record.DataQuality,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
