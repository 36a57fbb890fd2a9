package entities

import (
	"github.com/hookrelay-io/hookrelay/pkg/types"
)

// InboundEvent is the idempotency ledger for externally-delivered provider
// events. Rows are inserted exactly once per (provider, external event id)
// and never updated.
type InboundEvent struct {
	ID              string     `json:"id" db:"id"`
	Provider        string     `json:"provider" db:"provider"`
	ExternalEventId string     `json:"external_event_id" db:"external_event_id"`
	ProcessedAt     types.Time `json:"processed_at" db:"processed_at"`
}
