package dao

import (
	"context"

	"github.com/hookrelay-io/hookrelay/db/entities"
	"github.com/jmoiron/sqlx"
)

type endpointDAO struct {
	*DAO[entities.Endpoint]
}

func NewEndpointDAO(db *sqlx.DB, organization bool) EndpointDAO {
	return &endpointDAO{
		DAO: NewDAO[entities.Endpoint]("endpoints", db, organization),
	}
}

func (dao *endpointDAO) UpdateSecret(ctx context.Context, id string, secret string) (bool, error) {
	rows, err := dao.update(ctx, id, map[string]interface{}{
		"secret": secret,
	})
	return rows > 0, err
}
