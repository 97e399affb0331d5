// Package db is the local SQLite cache. It keeps the last fetched
// reservation listing so the client can render rows (and export
// reports) while the API is unreachable, plus the persisted session.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"ureserve/internal/models"
	"ureserve/internal/session"
)

// DB wraps sql.DB for the local cache.
type DB struct {
	*sql.DB
}

// NewDB opens the cache database at path and runs migrations.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Cached reservation listing. Date/time columns stay raw
		// strings; the window package owns their interpretation.
		`CREATE TABLE IF NOT EXISTS reservations (
			code TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			date TEXT NOT NULL,
			start_time TEXT,
			end_time TEXT,
			student_id TEXT NOT NULL,
			facility TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_reservations_student
			ON reservations(student_id)`,

		// Single-row persisted session (last login).
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			token TEXT NOT NULL,
			student_id TEXT NOT NULL,
			name TEXT,
			email TEXT,
			issued_at DATETIME NOT NULL
		)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// ReplaceReservations replaces the cached listing for a student with
// the freshly fetched one.
func (d *DB) ReplaceReservations(ctx context.Context, studentID string, items []models.Reservation) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE student_id = ?`, studentID); err != nil {
		return fmt.Errorf("clear cached reservations: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reservations (code, type, date, start_time, end_time, student_id, facility, status, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range items {
		r := &items[i]
		status := r.Status
		if status == "" {
			status = models.StatusPending
		}
		if _, err := stmt.ExecContext(ctx,
			r.Code, string(r.NormalizedType()), r.Date, r.StartTime, r.EndTime,
			studentID, r.FacilityName, status, now,
		); err != nil {
			return fmt.Errorf("insert reservation %s: %w", r.Code, err)
		}
	}

	return tx.Commit()
}

// ListReservations returns the cached listing for a student, newest
// date first.
func (d *DB) ListReservations(ctx context.Context, studentID string) ([]models.Reservation, error) {
	rows, err := d.QueryContext(ctx, `
		SELECT code, type, date, start_time, end_time, student_id, facility, status
		FROM reservations
		WHERE student_id = ?
		ORDER BY date DESC, start_time DESC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	var out []models.Reservation
	for rows.Next() {
		var r models.Reservation
		var typ string
		if err := rows.Scan(&r.Code, &typ, &r.Date, &r.StartTime, &r.EndTime,
			&r.StudentID, &r.FacilityName, &r.Status); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		r.Type = models.TypeCode(typ)
		out = append(out, r)
	}
	return out, rows.Err()
}

// AllReservations returns every cached reservation, for report export.
func (d *DB) AllReservations(ctx context.Context) ([]models.Reservation, error) {
	rows, err := d.QueryContext(ctx, `
		SELECT code, type, date, start_time, end_time, student_id, facility, status
		FROM reservations
		ORDER BY type, date DESC`)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	var out []models.Reservation
	for rows.Next() {
		var r models.Reservation
		var typ string
		if err := rows.Scan(&r.Code, &typ, &r.Date, &r.StartTime, &r.EndTime,
			&r.StudentID, &r.FacilityName, &r.Status); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		r.Type = models.TypeCode(typ)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SetReservationStatus updates the cached status for one reservation.
func (d *DB) SetReservationStatus(ctx context.Context, code, status string) error {
	res, err := d.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE code = ?`, status, code)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("reservation %s not cached", code)
	}
	return nil
}

// PurgeStale removes cached rows fetched before the cutoff.
func (d *DB) PurgeStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := d.ExecContext(ctx,
		`DELETE FROM reservations WHERE fetched_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge stale: %w", err)
	}
	return res.RowsAffected()
}

// SaveSession persists the login session, replacing any previous one.
func (d *DB) SaveSession(ctx context.Context, s session.Session) error {
	_, err := d.ExecContext(ctx, `
		INSERT INTO sessions (id, token, student_id, name, email, issued_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			student_id = excluded.student_id,
			name = excluded.name,
			email = excluded.email,
			issued_at = excluded.issued_at`,
		s.Token, s.StudentID, s.Name, s.Email, s.IssuedAt.UTC())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LoadSession returns the persisted session, or a zero session when no
// login has been stored.
func (d *DB) LoadSession(ctx context.Context) (session.Session, error) {
	var s session.Session
	err := d.QueryRowContext(ctx, `
		SELECT token, student_id, name, email, issued_at
		FROM sessions WHERE id = 1`).
		Scan(&s.Token, &s.StudentID, &s.Name, &s.Email, &s.IssuedAt)
	if err == sql.ErrNoRows {
		return session.Session{}, nil
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("load session: %w", err)
	}
	return s, nil
}

// ClearSession removes the persisted session.
func (d *DB) ClearSession(ctx context.Context) error {
	_, err := d.ExecContext(ctx, `DELETE FROM sessions WHERE id = 1`)
	return err
}

// CountByType returns cached reservation counts grouped by type code.
func (d *DB) CountByType(ctx context.Context) (map[string]int, error) {
	rows, err := d.QueryContext(ctx,
		`SELECT type, COUNT(*) FROM reservations GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("count by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		counts[strings.ToUpper(typ)] = n
	}
	return counts, rows.Err()
}
