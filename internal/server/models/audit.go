package models

import "time"

// Snapshot maps column names to comparable scalar values (string, int,
// int64, bool).
type Snapshot map[string]any

// FieldChange is the before/after pair recorded for one column.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// Changes is keyed by column name.
type Changes map[string]FieldChange

type AuditAction string

const (
	AuditUpdate  AuditAction = "update"
	AuditCheckIn AuditAction = "check_in"
	AuditPayment AuditAction = "payment"
)

// AuditEntity selects which audit table an entry belongs to.
type AuditEntity string

const (
	AuditRegistration AuditEntity = "registration"
	AuditSponsor      AuditEntity = "sponsor"
)

// AuditLogEntry is an append-only record of one mutation. A nil ActorID
// means the change was made by the system.
type AuditLogEntry struct {
	ID        string
	EntityID  string
	ActorID   *string
	Action    AuditAction
	Changes   Changes
	CreatedAt time.Time
}
