package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/hookrelay-io/hookrelay/admin/api"
	"github.com/hookrelay-io/hookrelay/config"
	"github.com/hookrelay-io/hookrelay/db"
	"github.com/hookrelay-io/hookrelay/dispatcher"
	"github.com/hookrelay-io/hookrelay/inbound"
	"github.com/hookrelay-io/hookrelay/pkg/log"
	"github.com/hookrelay-io/hookrelay/pkg/signature"
	"github.com/hookrelay-io/hookrelay/worker"
	"github.com/hookrelay-io/hookrelay/worker/deliverer"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	ErrApplicationStarted = errors.New("already started")
	ErrApplicationStopped = errors.New("already stopped")
)

// Application assembles and runs the process: the delivery worker, the
// inbound gateway and the admin API.
type Application struct {
	mux     sync.Mutex
	started bool

	cfg *config.Config
	log *zap.SugaredLogger

	db         *db.DB
	redis      *redis.Client
	worker     *worker.Worker
	dispatcher *dispatcher.Dispatcher

	inboundServer *http.Server
	adminServer   *http.Server
}

func NewApplication(cfg *config.Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
	}

	err := app.initialize()
	if err != nil {
		return nil, err
	}

	return app, nil
}

func (app *Application) initialize() error {
	cfg := app.cfg

	logger, err := log.NewZapLogger(&cfg.Log)
	if err != nil {
		return err
	}
	app.log = logger

	// db
	sqlDB, err := db.NewSqlDB(cfg.Database)
	if err != nil {
		return err
	}
	database, err := db.NewDB(sqlDB, app.log)
	if err != nil {
		return err
	}
	app.db = database

	if cfg.Redis.Enabled() {
		app.redis = cfg.Redis.GetClient()
	}

	signer := signature.NewSigner()

	// worker
	app.worker = worker.NewWorker(worker.Options{
		Config:    &cfg.Worker,
		DB:        app.db,
		Deliverer: deliverer.NewHTTPDeliverer(&cfg.Worker.Deliverer),
		Signer:    signer,
		Redis:     app.redis,
		Log:       app.log,
	})

	app.dispatcher = dispatcher.NewDispatcher(app.log, app.worker, app.db)

	// inbound gateway
	gateway := inbound.NewGateway(inbound.Options{
		Config:     &cfg.Inbound,
		Log:        app.log,
		DB:         app.db,
		Dispatcher: app.dispatcher,
		Sweeper:    app.worker,
		Signer:     signer,
		Production: cfg.Environment == config.EnvProduction,
	})
	app.inboundServer = &http.Server{
		Addr:    cfg.Inbound.Listen,
		Handler: gateway.Handler(),
	}

	// admin api
	adminAPI := api.NewAPI(api.Options{
		Config:     cfg,
		Log:        app.log,
		DB:         app.db,
		Dispatcher: app.dispatcher,
	})
	app.adminServer = &http.Server{
		Addr:    cfg.Admin.Listen,
		Handler: adminAPI.Handler(),
	}

	return nil
}

func (app *Application) Start() error {
	app.mux.Lock()
	defer app.mux.Unlock()

	if app.started {
		return ErrApplicationStarted
	}

	if err := app.worker.Start(); err != nil {
		return err
	}

	app.serve(app.inboundServer, "inbound")
	app.serve(app.adminServer, "admin")

	app.started = true
	app.log.Infof("[app] started (version %s, environment %s)", config.VERSION, app.cfg.Environment)

	return nil
}

func (app *Application) serve(server *http.Server, name string) {
	app.log.Infof("[app] %s listening on %s", name, server.Addr)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.log.Errorf("[app] %s server error: %v", name, err)
		}
	}()
}

func (app *Application) Stop() error {
	app.mux.Lock()
	defer app.mux.Unlock()

	if !app.started {
		return ErrApplicationStopped
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := app.inboundServer.Shutdown(ctx); err != nil {
		app.log.Errorf("[app] failed to shutdown inbound server: %v", err)
	}
	if err := app.adminServer.Shutdown(ctx); err != nil {
		app.log.Errorf("[app] failed to shutdown admin server: %v", err)
	}

	if err := app.worker.Stop(); err != nil {
		app.log.Errorf("[app] failed to stop worker: %v", err)
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.log.Errorf("[app] failed to close redis: %v", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.log.Errorf("[app] failed to close db: %v", err)
	}

	app.started = false
	app.log.Info("[app] stopped")

	return nil
}
