package dispatcher

import (
	"context"
	"time"

	"github.com/hookrelay-io/hookrelay/db"
	"github.com/hookrelay-io/hookrelay/db/entities"
	"github.com/hookrelay-io/hookrelay/db/query"
	"github.com/hookrelay-io/hookrelay/pkg/safe"
	"github.com/hookrelay-io/hookrelay/pkg/types"
	"github.com/hookrelay-io/hookrelay/utils"
	"go.uber.org/zap"
)

// Queue receives attempt ids ready for immediate delivery. The worker
// implements it; delivery never happens on the dispatching goroutine.
type Queue interface {
	Enqueue(ctx context.Context, attemptIDs []string)
}

// Dispatcher fans out events to subscribed endpoints.
type Dispatcher struct {
	log   *zap.SugaredLogger
	queue Queue
	db    *db.DB
}

func NewDispatcher(log *zap.SugaredLogger, queue Queue, db *db.DB) *Dispatcher {
	d := &Dispatcher{
		log:   log,
		queue: queue,
		db:    db,
	}
	if d.log == nil {
		d.log = zap.S()
	}
	return d
}

// Dispatch persists the event along with one pending attempt per subscribed
// active endpoint, then hands the attempts to the worker.
func (d *Dispatcher) Dispatch(ctx context.Context, event *entities.Event) error {
	endpoints, err := d.listSubscribedEndpoints(ctx, event.OrganizationId, event.EventType)
	if err != nil {
		return err
	}

	attempts := fanout(event, endpoints)
	if len(attempts) == 0 {
		d.log.Debugf("[dispatcher] no subscribed endpoints for event %s (%s)", event.ID, event.EventType)
		return d.db.Events.Insert(ctx, event)
	}

	err = d.db.TX(ctx, func(ctx context.Context) error {
		if err := d.db.Events.Insert(ctx, event); err != nil {
			return err
		}
		return d.db.Attempts.BatchInsert(ctx, attempts)
	})
	if err != nil {
		return err
	}

	d.log.Debugf("[dispatcher] dispatched event %s (%s) to %d endpoints", event.ID, event.EventType, len(attempts))
	d.enqueue(attempts)

	return nil
}

// DispatchEndpoint sends an already-persisted event to explicit endpoints,
// regardless of subscriptions. Used for test sends.
func (d *Dispatcher) DispatchEndpoint(ctx context.Context, event *entities.Event, endpoints []*entities.Endpoint) error {
	attempts := fanout(event, endpoints)

	err := d.db.TX(ctx, func(ctx context.Context) error {
		if err := d.db.Events.Insert(ctx, event); err != nil {
			return err
		}
		return d.db.Attempts.BatchInsert(ctx, attempts)
	})
	if err != nil {
		return err
	}

	d.enqueue(attempts)

	return nil
}

func (d *Dispatcher) enqueue(attempts []*entities.Attempt) {
	ids := make([]string, 0, len(attempts))
	for _, attempt := range attempts {
		ids = append(ids, attempt.ID)
	}
	safe.Go(func() {
		d.queue.Enqueue(context.Background(), ids)
	})
}

func fanout(event *entities.Event, endpoints []*entities.Endpoint) []*entities.Attempt {
	attempts := make([]*entities.Attempt, 0, len(endpoints))
	now := types.NewTime(time.Now())
	for _, endpoint := range endpoints {
		attempt := &entities.Attempt{
			ID:            utils.KSUID(),
			EventId:       event.ID,
			EndpointId:    endpoint.ID,
			Status:        entities.AttemptStatusPending,
			AttemptNumber: 1,
			NextRetryAt:   &now,
		}
		attempt.OrganizationId = event.OrganizationId
		attempts = append(attempts, attempt)
	}
	return attempts
}

func (d *Dispatcher) listSubscribedEndpoints(ctx context.Context, orgId, eventType string) ([]*entities.Endpoint, error) {
	var q query.EndpointQuery
	q.OrganizationId = &orgId
	q.Enabled = utils.Pointer(true)
	endpoints, err := d.db.Endpoints.List(ctx, &q)
	if err != nil {
		return nil, err
	}

	list := make([]*entities.Endpoint, 0, len(endpoints))
	for _, endpoint := range endpoints {
		if endpoint.Subscribed(eventType) {
			list = append(list, endpoint)
		}
	}

	return list, nil
}
