package inbound

import (
	"context"

	"github.com/hookrelay-io/hookrelay/db"
)

// Guard deduplicates externally-delivered events. Providers deliver
// at-least-once, so every handler must pass through Admit before running any
// side effect.
type Guard struct {
	db *db.DB
}

func NewGuard(db *db.DB) *Guard {
	return &Guard{db: db}
}

// Admit returns true when the event has not been seen before. A false return
// means a prior delivery was already admitted and the caller must
// short-circuit.
func (g *Guard) Admit(ctx context.Context, provider, externalEventId string) (bool, error) {
	return g.db.InboundEvents.Admit(ctx, provider, externalEventId)
}
