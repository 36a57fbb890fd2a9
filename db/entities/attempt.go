package entities

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/hookrelay-io/hookrelay/pkg/types"
)

// Attempt is one delivery chain of an Event to an Endpoint. The row is
// created at fan-out and mutated in place as the worker retries; it is never
// deleted and forms the audit trail.
type Attempt struct {
	ID            string            `json:"id" db:"id"`
	EventId       string            `json:"event_id" db:"event_id"`
	EndpointId    string            `json:"endpoint_id" db:"endpoint_id"`
	Status        AttemptStatus     `json:"status" db:"status"`
	AttemptNumber int               `json:"attempt_number" db:"attempt_number"`
	StatusCode    *int              `json:"status_code" db:"status_code"`
	DeliveredAt   *types.Time       `json:"delivered_at" db:"delivered_at"`
	NextRetryAt   *types.Time       `json:"next_retry_at" db:"next_retry_at"`
	LastError     *string           `json:"last_error" db:"last_error"`
	ErrorCode     *AttemptErrorCode `json:"error_code" db:"error_code"`
	Request       *AttemptRequest   `json:"request" db:"request"`
	Response      *AttemptResponse  `json:"response" db:"response"`

	BaseModel
}

type AttemptStatus = string

const (
	// AttemptStatusPending is waiting for delivery at next_retry_at.
	AttemptStatusPending AttemptStatus = "PENDING"
	// AttemptStatusDelivering has been claimed by a worker.
	AttemptStatusDelivering AttemptStatus = "DELIVERING"
	AttemptStatusSuccess    AttemptStatus = "SUCCESSFUL"
	AttemptStatusFailed     AttemptStatus = "FAILED"
	AttemptStatusCanceled   AttemptStatus = "CANCELED"
)

func IsTerminal(status AttemptStatus) bool {
	switch status {
	case AttemptStatusSuccess, AttemptStatusFailed, AttemptStatusCanceled:
		return true
	}
	return false
}

type AttemptErrorCode = string

const (
	AttemptErrorCodeTimeout          AttemptErrorCode = "TIMEOUT"
	AttemptErrorCodeConnection       AttemptErrorCode = "CONNECTION"
	AttemptErrorCodeExhausted        AttemptErrorCode = "EXHAUSTED"
	AttemptErrorCodeEndpointDisabled AttemptErrorCode = "ENDPOINT_DISABLED"
	AttemptErrorCodeEndpointNotFound AttemptErrorCode = "ENDPOINT_NOT_FOUND"
	AttemptErrorCodeUnknown          AttemptErrorCode = "UNKNOWN"
)

// AttemptRequest is a snapshot of the outbound request, kept for operators.
type AttemptRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
	Body    *string           `json:"body"`
}

func (m *AttemptRequest) Scan(src interface{}) error {
	return json.Unmarshal(src.([]byte), m)
}

func (m AttemptRequest) Value() (driver.Value, error) {
	return json.Marshal(m)
}

type AttemptResponse struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Body    *string           `json:"body"`
}

func (m *AttemptResponse) Scan(src interface{}) error {
	return json.Unmarshal(src.([]byte), m)
}

func (m AttemptResponse) Value() (driver.Value, error) {
	return json.Marshal(m)
}
