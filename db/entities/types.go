package entities

import (
	"github.com/hookrelay-io/hookrelay/pkg/types"
	"github.com/lib/pq"
)

type BaseModel struct {
	CreatedAt      types.Time `db:"created_at" json:"created_at"`
	UpdatedAt      types.Time `db:"updated_at" json:"updated_at"`
	OrganizationId string     `db:"org_id" json:"-"`
}

type Strings = pq.StringArray
