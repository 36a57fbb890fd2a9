package dao

import (
	"context"

	"github.com/hookrelay-io/hookrelay/db/entities"
	"github.com/hookrelay-io/hookrelay/utils"
	"github.com/jmoiron/sqlx"
)

type inboundEventDAO struct {
	*DAO[entities.InboundEvent]
}

func NewInboundEventDAO(db *sqlx.DB) InboundEventDAO {
	return &inboundEventDAO{
		DAO: NewDAO[entities.InboundEvent]("inbound_events", db, false),
	}
}

// Admit relies on the unique (provider, external_event_id) constraint: a
// conflicting insert means a prior delivery was already admitted.
func (dao *inboundEventDAO) Admit(ctx context.Context, provider, externalEventId string) (bool, error) {
	statement := `INSERT INTO inbound_events (id, provider, external_event_id, processed_at) VALUES ($1, $2, $3, now()) ON CONFLICT (provider, external_event_id) DO NOTHING`
	result, err := dao.DB(ctx).ExecContext(ctx, statement, utils.KSUID(), provider, externalEventId)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
