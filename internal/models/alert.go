package models

import "time"

// Severity of an alert shown to the user.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
	SeveritySuccess  Severity = "success"
)

// Category groups alerts by building subsystem.
type Category string

const (
	CategoryHVAC    Category = "hvac"
	CategoryAccess  Category = "access"
	CategoryNetwork Category = "network"
	CategorySensor  Category = "sensor"
	CategorySystem  Category = "system"
)

// Alert is a single user-facing alert entry.
// Lifecycle is one-way: unread->read, unresolved->resolved, delete is terminal.
type Alert struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Severity   Severity  `json:"severity"`
	Category   Category  `json:"category"`
	Timestamp  time.Time `json:"timestamp"`
	DeviceID   string    `json:"device_id,omitempty"`
	ZoneID     string    `json:"zone_id,omitempty"`
	IsRead     bool      `json:"is_read"`
	IsResolved bool      `json:"is_resolved"`
}

// NotificationRecord tracks the last scheduled notification per device.
// It lives in memory only; losing it just means one extra notification.
type NotificationRecord struct {
	DeviceID    string    `json:"device_id"`
	Severity    Severity  `json:"severity"`
	ScheduledAt time.Time `json:"scheduled_at"`
}
