package repository

import (
	"context"
	"database/sql"
	"time"

	"building_monitor/internal/models"
)

type AlertSQLite struct {
	db *sql.DB
}

func NewAlertSQLite(db *sql.DB) *AlertSQLite { return &AlertSQLite{db: db} }

var _ AlertRepo = (*AlertSQLite)(nil)

const (
	insertAlertSQL = `
		INSERT INTO alerts (id, title, message, severity, category, created_at, device_id, zone_id, is_read, is_resolved)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	updateAlertSQL = `
		UPDATE alerts SET is_read=?, is_resolved=? WHERE id=?
	`

	deleteAlertSQL = `DELETE FROM alerts WHERE id=?`

	listAlertsSQL = `
		SELECT id, title, message, severity, category, created_at, device_id, zone_id, is_read, is_resolved
		FROM alerts ORDER BY created_at DESC
	`
)

// Insert appends a new alert row.
func (r *AlertSQLite) Insert(ctx context.Context, a models.Alert) error {
	ts := a.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}
	_, err := r.db.ExecContext(ctx, insertAlertSQL,
		a.ID,
		a.Title,
		a.Message,
		string(a.Severity),
		string(a.Category),
		ts,
		nullableString(a.DeviceID),
		nullableString(a.ZoneID),
		a.IsRead,
		a.IsResolved,
	)
	return err
}

// Update persists the read/resolved flags. Only those flags ever change; the
// rest of an alert is immutable after insert.
func (r *AlertSQLite) Update(ctx context.Context, a models.Alert) error {
	_, err := r.db.ExecContext(ctx, updateAlertSQL, a.IsRead, a.IsResolved, a.ID)
	return err
}

// Delete removes an alert row. Deleting an unknown id is not an error.
func (r *AlertSQLite) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, deleteAlertSQL, id)
	return err
}

// ListAll returns every persisted alert, most recent first.
func (r *AlertSQLite) ListAll(ctx context.Context) ([]models.Alert, error) {
	rows, err := r.db.QueryContext(ctx, listAlertsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Alert, 0, 64)
	for rows.Next() {
		var a models.Alert
		var severity, category string
		var deviceID, zoneID sql.NullString
		if err := rows.Scan(
			&a.ID,
			&a.Title,
			&a.Message,
			&severity,
			&category,
			&a.Timestamp,
			&deviceID,
			&zoneID,
			&a.IsRead,
			&a.IsResolved,
		); err != nil {
			return nil, err
		}
		a.Severity = models.Severity(severity)
		a.Category = models.Category(category)
		a.Timestamp = a.Timestamp.UTC()
		a.DeviceID = deviceID.String
		a.ZoneID = zoneID.String
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// nullableString maps "" to NULL so optional columns stay queryable as NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
