package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/streamfest/station-booking/internal/model"
)

// mysqlTime is the DATETIME layout used for parameters.  Result columns
// come back as time.Time because the DSN sets parseTime=true with loc=UTC.
const mysqlTime = "2006-01-02 15:04:05"

// LedgerRepo provides access to the slots table, the durable occupancy
// ledger.  A row exists for a (station, slot_hour) pair exactly when that
// slot is occupied; the unique key on the pair makes double booking
// impossible even if the advisory lock were ever bypassed.  All timestamps
// are stored and compared in UTC.
type LedgerRepo struct {
	db *sql.DB
}

// NewLedgerRepo returns a new LedgerRepo bound to the given database.
func NewLedgerRepo(db *sql.DB) *LedgerRepo { return &LedgerRepo{db: db} }

// CountOccupied returns how many hours of the inclusive range [start, end]
// are occupied for the station.
func (r *LedgerRepo) CountOccupied(ctx context.Context, station model.Station, start, end time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM slots WHERE station = ? AND slot_hour BETWEEN ? AND ?`
	var n int
	err := r.db.QueryRowContext(ctx, q,
		string(station), start.UTC().Format(mysqlTime), end.UTC().Format(mysqlTime),
	).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Reserve inserts one row per hour attributing the range to name.  All
// rows are written in a single transaction so a partially reserved range
// is never visible.  Passing an empty slice has no effect and returns nil.
func (r *LedgerRepo) Reserve(ctx context.Context, station model.Station, hours []time.Time, name string) error {
	if len(hours) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	query := `INSERT INTO slots (station, slot_hour, occupant) VALUES `
	args := make([]interface{}, 0, len(hours)*3)
	for i, h := range hours {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, string(station), h.UTC().Format(mysqlTime), name)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Release deletes the rows for the given hours, returning the slots to
// unoccupied.  Hours that are already free are skipped silently.
func (r *LedgerRepo) Release(ctx context.Context, station model.Station, hours []time.Time) error {
	if len(hours) == 0 {
		return nil
	}
	placeholders := make([]string, 0, len(hours))
	args := make([]interface{}, 0, len(hours)+1)
	args = append(args, string(station))
	for _, h := range hours {
		placeholders = append(placeholders, "?")
		args = append(args, h.UTC().Format(mysqlTime))
	}
	query := `DELETE FROM slots WHERE station = ? AND slot_hour IN (` + strings.Join(placeholders, ",") + `)`
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Occupied lists all occupied slots with slot_hour >= from, ordered by
// hour then station for deterministic output.
func (r *LedgerRepo) Occupied(ctx context.Context, from time.Time) ([]model.SlotView, error) {
	const q = `SELECT station, slot_hour, occupant
	           FROM slots
	           WHERE slot_hour >= ?
	           ORDER BY slot_hour, station`
	rows, err := r.db.QueryContext(ctx, q, from.UTC().Format(mysqlTime))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	views := make([]model.SlotView, 0)
	for rows.Next() {
		var sv model.SlotView
		var station string
		if err := rows.Scan(&station, &sv.Hour, &sv.Occupant); err != nil {
			return nil, err
		}
		sv.Station = model.Station(station)
		views = append(views, sv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return views, nil
}
