package entities

import (
	"encoding/json"
	"time"

	"github.com/hookrelay-io/hookrelay/pkg/types"
	"github.com/hookrelay-io/hookrelay/utils"
)

// Event is immutable once created; it is the unit of fan-out to subscribed
// endpoints.
type Event struct {
	ID         string          `json:"id" db:"id"`
	EventType  string          `json:"event_type" db:"event_type" validate:"required"`
	Data       json.RawMessage `json:"data" db:"data" validate:"required"`
	OccurredAt types.Time      `json:"occurred_at" db:"occurred_at"`

	BaseModel
}

func (m *Event) Init() {
	m.ID = utils.KSUID()
	m.OccurredAt = types.NewTime(time.Now())
}

func (m *Event) Validate() error {
	return utils.Validate(m)
}
