package dao

import (
	"context"
	"time"

	"github.com/hookrelay-io/hookrelay/db/entities"
	"github.com/hookrelay-io/hookrelay/db/query"
)

type BaseDAO[T any] interface {
	Get(ctx context.Context, id string) (entity *T, err error)
	Delete(ctx context.Context, id string) (bool, error)
	Page(ctx context.Context, q query.Queryer) (list []*T, total int64, err error)
	Count(ctx context.Context, where map[string]interface{}) (total int64, err error)
	List(ctx context.Context, q query.Queryer) (list []*T, err error)
	Insert(ctx context.Context, entity *T) error
	BatchInsert(ctx context.Context, entities []*T) error
	Update(ctx context.Context, entity *T) error
}

type EndpointDAO interface {
	BaseDAO[entities.Endpoint]

	UpdateSecret(ctx context.Context, id string, secret string) (bool, error)
}

type EventDAO interface {
	BaseDAO[entities.Event]
}

type AttemptDAO interface {
	BaseDAO[entities.Attempt]

	// RequeueStale returns attempts claimed longer than ttl ago to the
	// pending state so a crashed worker cannot strand them.
	RequeueStale(ctx context.Context, ttl time.Duration) (int64, error)
	// ListDueIDs returns ids of attempts due for delivery. Rows locked by a
	// concurrent sweep are skipped.
	ListDueIDs(ctx context.Context, limit int) ([]string, error)
	// Claim transitions a pending attempt to DELIVERING. It returns nil when
	// the attempt was already claimed or is terminal.
	Claim(ctx context.Context, id string) (*entities.Attempt, error)
	UpdateDelivery(ctx context.Context, id string, result *DeliveryResult) error
}

type InboundEventDAO interface {
	BaseDAO[entities.InboundEvent]

	// Admit inserts the (provider, externalEventId) pair. It returns false
	// when a prior admission exists.
	Admit(ctx context.Context, provider, externalEventId string) (bool, error)
}
