package dao

import (
	"github.com/hookrelay-io/hookrelay/db/entities"
	"github.com/jmoiron/sqlx"
)

type eventDAO struct {
	*DAO[entities.Event]
}

func NewEventDAO(db *sqlx.DB, organization bool) EventDAO {
	return &eventDAO{
		DAO: NewDAO[entities.Event]("events", db, organization),
	}
}
