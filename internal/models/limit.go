package models

import "time"

// LimitProvenance marks which store a limit value came from.
type LimitProvenance string

const (
	ProvenanceAuthoritative LimitProvenance = "authoritative"
	ProvenanceLocalBackup   LimitProvenance = "localBackup"
)

// TemperatureLimit is the per-device alerting threshold. One row per device,
// kept in both the authoritative and the backup table.
type TemperatureLimit struct {
	DeviceID      string          `json:"device_id"`
	Value         float64         `json:"value"`
	Provenance    LimitProvenance `json:"provenance"`
	LastWrittenAt time.Time       `json:"last_written_at"`
}
