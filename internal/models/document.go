package models

import "time"

// AuditDocument is one immutable record in the external audit ledger.
// Documents are owned by the ledger; this service only appends new ones and
// holds read-only cached copies.
type AuditDocument struct {
	ID            string    `json:"id"`
	CoreID        string    `json:"core_id"` // origin-device correlation key
	Name          string    `json:"name"`
	Payload       string    `json:"payload"` // reading + metadata, usually JSON
	PublishedDate time.Time `json:"published_date"`
	TTLSeconds    *int64    `json:"ttl,omitempty"`
	Clearance     int       `json:"clearance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
