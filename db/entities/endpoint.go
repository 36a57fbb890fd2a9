package entities

import (
	"slices"

	"github.com/hookrelay-io/hookrelay/utils"
)

// Endpoint is an organization-registered destination for webhook deliveries.
// The secret is generated at creation, returned to the caller exactly once,
// and used by the worker to sign payloads just before each send.
type Endpoint struct {
	ID          string  `json:"id" db:"id"`
	URL         string  `json:"url" db:"url" validate:"required,url"`
	Secret      string  `json:"-" db:"secret"`
	Description *string `json:"description" db:"description"`
	Events      Strings `json:"events" db:"events" validate:"required,min=1"`
	Enabled     bool    `json:"enabled" db:"enabled"`

	BaseModel
}

func (m *Endpoint) Init() {
	m.ID = utils.KSUID()
	m.Secret = utils.Secret(24)
	m.Enabled = true
}

func (m *Endpoint) Validate() error {
	return utils.Validate(m)
}

func (m *Endpoint) Subscribed(eventType string) bool {
	return slices.Contains(m.Events, eventType)
}
