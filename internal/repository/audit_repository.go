package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/streamfest/station-booking/internal/model"
)

// AuditRepo provides access to the audit_log table, the append-only record
// of booking and cancellation events.  Rows are only ever inserted; there
// is deliberately no update or delete method on this type.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo returns a new AuditRepo bound to the given database.
func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

// Append inserts the entry and populates its generated ID.  The code
// column is NULL for Removed entries, which carry no code.
func (r *AuditRepo) Append(ctx context.Context, e *model.AuditEntry) error {
	const q = `INSERT INTO audit_log (created_at, code, name, station, start_hour, duration_hours, action)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	var code sql.NullString
	if e.Code != "" {
		code = sql.NullString{String: e.Code, Valid: true}
	}
	result, err := r.db.ExecContext(ctx, q,
		e.Timestamp.UTC().Format(mysqlTime),
		code,
		e.Name,
		string(e.Station),
		e.Start.UTC().Format(mysqlTime),
		e.DurationHours,
		e.Action,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// LatestBooked returns the most recent Booked entry carrying the given
// code, or nil when the code was never issued.
func (r *AuditRepo) LatestBooked(ctx context.Context, code string) (*model.AuditEntry, error) {
	const q = `SELECT id, created_at, code, name, station, start_hour, duration_hours, action
	           FROM audit_log
	           WHERE code = ? AND action = ?
	           ORDER BY id DESC
	           LIMIT 1`
	e, err := scanEntry(r.db.QueryRowContext(ctx, q, code, model.ActionBooked))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// RemovedAfter reports whether a Removed entry with id > afterID references
// the same station/start/duration/name combination.  Used to reject a code
// whose booking has already been cancelled.
func (r *AuditRepo) RemovedAfter(ctx context.Context, afterID uint64, station model.Station, start time.Time, duration int, name string) (bool, error) {
	const q = `SELECT EXISTS(
	               SELECT 1 FROM audit_log
	               WHERE id > ? AND action = ?
	                 AND station = ? AND start_hour = ? AND duration_hours = ? AND name = ?
	           )`
	var exists bool
	err := r.db.QueryRowContext(ctx, q,
		afterID, model.ActionRemoved,
		string(station), start.UTC().Format(mysqlTime), duration, name,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// List returns all audit entries ordered by timestamp ascending, with the
// insertion order breaking ties between events in the same second.
func (r *AuditRepo) List(ctx context.Context) ([]model.AuditEntry, error) {
	const q = `SELECT id, created_at, code, name, station, start_hour, duration_hours, action
	           FROM audit_log
	           ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.AuditEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*model.AuditEntry, error) {
	var e model.AuditEntry
	var code sql.NullString
	var station string
	if err := row.Scan(&e.ID, &e.Timestamp, &code, &e.Name, &station, &e.Start, &e.DurationHours, &e.Action); err != nil {
		return nil, err
	}
	if code.Valid {
		e.Code = code.String
	}
	e.Station = model.Station(station)
	return &e, nil
}
