package dao

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/hookrelay-io/hookrelay/db/entities"
	"github.com/hookrelay-io/hookrelay/pkg/types"
	"github.com/jmoiron/sqlx"
)

type attemptDAO struct {
	*DAO[entities.Attempt]
}

// DeliveryResult is the state transition persisted after one delivery try.
type DeliveryResult struct {
	Status        entities.AttemptStatus
	AttemptNumber int
	StatusCode    *int
	DeliveredAt   *types.Time
	NextRetryAt   *types.Time
	LastError     *string
	ErrorCode     *entities.AttemptErrorCode
	Request       *entities.AttemptRequest
	Response      *entities.AttemptResponse
}

func NewAttemptDAO(db *sqlx.DB, organization bool) AttemptDAO {
	return &attemptDAO{
		DAO: NewDAO[entities.Attempt]("attempts", db, organization),
	}
}

// RequeueStale returns attempts claimed longer than ttl ago to the pending
// state. A worker that dies between Claim and UpdateDelivery leaves the row
// DELIVERING; without this the row is due forever and never reprocessed.
func (dao *attemptDAO) RequeueStale(ctx context.Context, ttl time.Duration) (int64, error) {
	statement := `UPDATE attempts SET status = $1, updated_at = now() WHERE status = $2 AND updated_at < now() - make_interval(secs => $3)`
	result, err := dao.DB(ctx).ExecContext(ctx, statement,
		entities.AttemptStatusPending, entities.AttemptStatusDelivering, ttl.Seconds())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (dao *attemptDAO) ListDueIDs(ctx context.Context, limit int) ([]string, error) {
	statement := `SELECT id FROM attempts WHERE status = $1 AND next_retry_at <= now() ORDER BY next_retry_at LIMIT $2 FOR UPDATE SKIP LOCKED`
	ids := make([]string, 0)
	err := dao.DB(ctx).SelectContext(ctx, &ids, statement, entities.AttemptStatusPending, limit)
	return ids, err
}

func (dao *attemptDAO) Claim(ctx context.Context, id string) (*entities.Attempt, error) {
	statement, args := psql.Update("attempts").
		Set("status", entities.AttemptStatusDelivering).
		Set("updated_at", types.NewTime(time.Now())).
		Where(sq.Eq{"id": id, "status": entities.AttemptStatusPending}).
		Suffix("RETURNING *").
		MustSql()
	dao.debugSQL(statement, args)
	attempt := new(entities.Attempt)
	err := dao.UnsafeDB(ctx).QueryRowxContext(ctx, statement, args...).StructScan(attempt)
	if errors.Is(err, ErrNoRows) {
		return nil, nil
	}
	return attempt, err
}

func (dao *attemptDAO) UpdateDelivery(ctx context.Context, id string, result *DeliveryResult) error {
	_, err := dao.update(ctx, id, map[string]interface{}{
		"status":         result.Status,
		"attempt_number": result.AttemptNumber,
		"status_code":    result.StatusCode,
		"delivered_at":   result.DeliveredAt,
		"next_retry_at":  result.NextRetryAt,
		"last_error":     result.LastError,
		"error_code":     result.ErrorCode,
		"request":        result.Request,
		"response":       result.Response,
	})
	return err
}
