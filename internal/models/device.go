package models

import "time"

// SensorKind identifies what a device measures.
type SensorKind string

const (
	KindTemperature SensorKind = "temperature"
	KindWaterLevel  SensorKind = "water-level"
	KindGeneric     SensorKind = "generic"
)

// DeviceStatus mirrors the status reported by the device fleet.
type DeviceStatus string

const (
	StatusOnline   DeviceStatus = "online"
	StatusWarning  DeviceStatus = "warning"
	StatusCritical DeviceStatus = "critical"
	StatusOffline  DeviceStatus = "offline"
)

// DeviceSnapshot is the last known reading of a device. Devices are owned by
// the fleet backend; this service only consumes snapshots pushed to it.
type DeviceSnapshot struct {
	ID        string       `json:"id"`
	Kind      SensorKind   `json:"kind"`
	Location  string       `json:"location,omitempty"`
	Value     float64      `json:"value"`
	Status    DeviceStatus `json:"status"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ReadingPoint is a single historical value kept for chart reloads.
type ReadingPoint struct {
	Value float64   `json:"value"`
	At    time.Time `json:"at"`
}
