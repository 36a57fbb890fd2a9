package migrator

import (
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/hookrelay-io/hookrelay/config"
	"github.com/hookrelay-io/hookrelay/db"
	"github.com/hookrelay-io/hookrelay/db/migrations"
)

// Migrator is a database migrator
type Migrator struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Migrator {
	return &Migrator{
		cfg: cfg,
	}
}

func (m *Migrator) init() (*migrate.Migrate, error) {
	sqlDB, err := db.NewSqlDB(m.cfg.Database)
	if err != nil {
		return nil, err
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{
		DatabaseName: m.cfg.Database.Database,
	})
	if err != nil {
		return nil, err
	}

	d, err := iofs.New(migrations.SQLs, ".")
	if err != nil {
		return nil, err
	}

	return migrate.NewWithInstance("iofs", d, "postgres", driver)
}

func (m *Migrator) Up() error {
	migrate, err := m.init()
	if err != nil {
		return err
	}
	return migrate.Up()
}

// Reset drops everything.
func (m *Migrator) Reset() error {
	migrate, err := m.init()
	if err != nil {
		return err
	}
	return migrate.Drop()
}

// Status returns the current schema version.
func (m *Migrator) Status() (version uint, dirty bool, err error) {
	migrate, err := m.init()
	if err != nil {
		return 0, false, err
	}
	return migrate.Version()
}
