package db

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/hookrelay-io/hookrelay/config"
	"github.com/hookrelay-io/hookrelay/db/dao"
	"github.com/hookrelay-io/hookrelay/db/transaction"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type DB struct {
	DB  *sqlx.DB
	log *zap.SugaredLogger

	Endpoints     dao.EndpointDAO
	EndpointsOrg  dao.EndpointDAO
	Events        dao.EventDAO
	EventsOrg     dao.EventDAO
	Attempts      dao.AttemptDAO
	AttemptsOrg   dao.AttemptDAO
	InboundEvents dao.InboundEventDAO
}

func NewSqlDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.GetDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(int(cfg.MaxPoolSize))
	db.SetMaxIdleConns(int(cfg.MaxPoolSize))
	db.SetConnMaxLifetime(time.Second * time.Duration(cfg.MaxLifetime))
	return db, nil
}

func NewDB(sqlDB *sql.DB, log *zap.SugaredLogger) (*DB, error) {
	sqlxDB := sqlx.NewDb(sqlDB, "pgx")

	db := &DB{
		DB:            sqlxDB,
		log:           log,
		Endpoints:     dao.NewEndpointDAO(sqlxDB, false),
		EndpointsOrg:  dao.NewEndpointDAO(sqlxDB, true),
		Events:        dao.NewEventDAO(sqlxDB, false),
		EventsOrg:     dao.NewEventDAO(sqlxDB, true),
		Attempts:      dao.NewAttemptDAO(sqlxDB, false),
		AttemptsOrg:   dao.NewAttemptDAO(sqlxDB, true),
		InboundEvents: dao.NewInboundEventDAO(sqlxDB),
	}

	return db, nil
}

func (db *DB) Ping() error {
	return db.DB.Ping()
}

// TX runs fn within a transaction carried through the context; DAO calls
// inside fn join it automatically.
func (db *DB) TX(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := db.DB.Beginx()
	if err != nil {
		return err
	}

	defer func() {
		if err := recover(); err != nil {
			db.log.Errorf("panic recovered: %v", err)
			if rbErr := tx.Rollback(); rbErr != nil {
				db.log.Errorf("failed to rollback the tx: %v", rbErr)
			}
			panic(err)
		}
	}()

	ctx = transaction.WithTx(ctx, tx)

	err = fn(ctx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrap(err, rbErr.Error())
		}
		return err
	}

	return tx.Commit()
}

func (db *DB) Close() error {
	return db.DB.Close()
}
