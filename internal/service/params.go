package service

import "building_monitor/internal/models"

// AlertParams carries everything needed to create a new alert.
type AlertParams struct {
	Title    string
	Message  string
	Severity models.Severity
	Category models.Category
	DeviceID string
	ZoneID   string
}

// AlertFilter narrows alert queries. Zero values mean "any".
type AlertFilter struct {
	Severity models.Severity
	Category models.Category
	DeviceID string
}
