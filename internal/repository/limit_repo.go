package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"building_monitor/internal/models"
)

type LimitSQLite struct {
	db *sql.DB
}

func NewLimitSQLite(db *sql.DB) *LimitSQLite {
	return &LimitSQLite{db: db}
}

var _ LimitRepo = (*LimitSQLite)(nil)

const (
	tableLimits       = "device_limits"
	tableLimitsBackup = "device_limits_backup"
)

// upsertLimitSQL returns the insert-or-update statement for the given table.
// The table name is one of two compile-time constants, never user input.
func upsertLimitSQL(table string) string {
	return fmt.Sprintf(`
		INSERT INTO %s (device_id, value, written_at)
		VALUES (?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			value=excluded.value,
			written_at=excluded.written_at
	`, table)
}

func selectLimitSQL(table string) string {
	return fmt.Sprintf(`SELECT device_id, value, written_at FROM %s WHERE device_id=?`, table)
}

func (r *LimitSQLite) save(ctx context.Context, table string, l models.TemperatureLimit) error {
	ts := l.LastWrittenAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}
	_, err := r.db.ExecContext(ctx, upsertLimitSQL(table), l.DeviceID, l.Value, ts)
	return err
}

func (r *LimitSQLite) load(ctx context.Context, table, deviceID string, prov models.LimitProvenance) (models.TemperatureLimit, error) {
	row := r.db.QueryRowContext(ctx, selectLimitSQL(table), deviceID)

	var l models.TemperatureLimit
	if err := row.Scan(&l.DeviceID, &l.Value, &l.LastWrittenAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TemperatureLimit{}, nil // no limit stored yet
		}
		return models.TemperatureLimit{}, err
	}
	l.Provenance = prov
	l.LastWrittenAt = l.LastWrittenAt.UTC()
	return l, nil
}

// SaveAuthoritative upserts the authoritative limit row for a device.
func (r *LimitSQLite) SaveAuthoritative(ctx context.Context, l models.TemperatureLimit) error {
	return r.save(ctx, tableLimits, l)
}

// SaveBackup upserts the backup limit row for a device.
func (r *LimitSQLite) SaveBackup(ctx context.Context, l models.TemperatureLimit) error {
	return r.save(ctx, tableLimitsBackup, l)
}

// LoadAuthoritative fetches the authoritative limit. A zero-value result with
// nil error means no row exists for the device.
func (r *LimitSQLite) LoadAuthoritative(ctx context.Context, deviceID string) (models.TemperatureLimit, error) {
	return r.load(ctx, tableLimits, deviceID, models.ProvenanceAuthoritative)
}

// LoadBackup fetches the backup limit. Same absent-row convention as LoadAuthoritative.
func (r *LimitSQLite) LoadBackup(ctx context.Context, deviceID string) (models.TemperatureLimit, error) {
	return r.load(ctx, tableLimitsBackup, deviceID, models.ProvenanceLocalBackup)
}
