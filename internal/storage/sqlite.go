package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"studytracker/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps one row per course/week cell in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load implements Store. An empty table means nothing was saved yet.
func (s *SQLiteStore) Load(ctx context.Context) (*core.Ledger, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT course, week, hours FROM study_hours`)
	if err != nil {
		return nil, fmt.Errorf("%w: query study hours: %w", ErrIO, err)
	}
	defer rows.Close()

	l := &core.Ledger{}
	n := 0
	for rows.Next() {
		var (
			course string
			week   int64
			hours  float64
		)
		if err := rows.Scan(&course, &week, &hours); err != nil {
			return nil, fmt.Errorf("%w: scan study hours: %w", ErrCorrupt, err)
		}
		l.Set(core.Course(course), core.Week(week), hours)
		n++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate study hours: %w", ErrIO, err)
	}

	raw, err := s.db.QueryContext(ctx, `SELECT course, week_key, hours FROM study_hours_raw`)
	if err != nil {
		return nil, fmt.Errorf("%w: query raw study hours: %w", ErrIO, err)
	}
	defer raw.Close()

	for raw.Next() {
		var (
			course string
			key    string
			hours  float64
		)
		if err := raw.Scan(&course, &key, &hours); err != nil {
			return nil, fmt.Errorf("%w: scan raw study hours: %w", ErrCorrupt, err)
		}
		l.SetRaw(core.Course(course), key, hours)
		n++
	}
	if err := raw.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate raw study hours: %w", ErrIO, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
	}

	l.Normalize()
	return l, nil
}

// Save implements Store. All rows are replaced inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, l *core.Ledger) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", ErrIO, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM study_hours`); err != nil {
		return fmt.Errorf("%w: clear study hours: %w", ErrIO, err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM study_hours_raw`); err != nil {
		return fmt.Errorf("%w: clear raw study hours: %w", ErrIO, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO study_hours (course, week, hours, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`)
	if err != nil {
		return fmt.Errorf("%w: prepare insert: %w", ErrIO, err)
	}
	defer stmt.Close()

	rowCount := 0
	l.Cells(func(c core.Course, w core.Week, hours float64) {
		if err != nil {
			return
		}
		if _, err = stmt.ExecContext(ctx, string(c), int64(w), hours); err != nil {
			err = fmt.Errorf("%w: insert %s/%d: %w", ErrIO, c, w, err)
			return
		}
		rowCount++
	})
	if err != nil {
		return err
	}

	rawStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO study_hours_raw (course, week_key, hours, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`)
	if err != nil {
		return fmt.Errorf("%w: prepare raw insert: %w", ErrIO, err)
	}
	defer rawStmt.Close()

	l.RawCells(func(c core.Course, key string, hours float64) {
		if err != nil {
			return
		}
		if _, err = rawStmt.ExecContext(ctx, string(c), key, hours); err != nil {
			err = fmt.Errorf("%w: insert %s/%s: %w", ErrIO, c, key, err)
			return
		}
		rowCount++
	})
	if err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrIO, err)
	}

	slog.DebugContext(ctx, "Ledger saved to SQLite", "path", s.path, "rows", rowCount)
	return nil
}
