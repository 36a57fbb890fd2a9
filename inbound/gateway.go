package inbound

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hookrelay-io/hookrelay/config"
	"github.com/hookrelay-io/hookrelay/db"
	"github.com/hookrelay-io/hookrelay/dispatcher"
	"github.com/hookrelay-io/hookrelay/pkg/http/middlewares"
	"github.com/hookrelay-io/hookrelay/pkg/http/response"
	"github.com/hookrelay-io/hookrelay/pkg/signature"
	"github.com/hookrelay-io/hookrelay/pkg/types"
	"go.uber.org/zap"
)

// Sweeper runs one pass over all due delivery attempts.
type Sweeper interface {
	ProcessDue(ctx context.Context) (int, error)
}

// Gateway terminates inbound HTTP: provider webhooks and the sweep trigger.
type Gateway struct {
	cfg        *config.InboundConfig
	log        *zap.SugaredLogger
	db         *db.DB
	dispatcher *dispatcher.Dispatcher
	sweeper    Sweeper
	guard      *Guard
	signer     *signature.Signer
	billing    BillingHandler
	production bool
}

type Options struct {
	Config         *config.InboundConfig
	Log            *zap.SugaredLogger
	DB             *db.DB
	Dispatcher     *dispatcher.Dispatcher
	Sweeper        Sweeper
	Signer         *signature.Signer
	BillingHandler BillingHandler
	Production     bool
}

func NewGateway(opts Options) *Gateway {
	gw := &Gateway{
		cfg:        opts.Config,
		log:        opts.Log,
		db:         opts.DB,
		dispatcher: opts.Dispatcher,
		sweeper:    opts.Sweeper,
		guard:      NewGuard(opts.DB),
		signer:     opts.Signer,
		billing:    opts.BillingHandler,
		production: opts.Production,
	}
	if gw.log == nil {
		gw.log = zap.S()
	}
	if gw.billing == nil {
		gw.billing = NopBillingHandler{}
	}
	return gw
}

func (gw *Gateway) Handler() http.Handler {
	r := mux.NewRouter()

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, 404, types.ErrorResponse{Message: "not found"})
	})

	r.Use(middlewares.PanicRecovery)
	r.Use(middlewares.AccessLog(gw.log))

	r.HandleFunc("/cron/webhook-retries", gw.Cron).Methods("POST")
	r.HandleFunc("/webhooks/stripe", gw.Stripe).Methods("POST")
	r.HandleFunc("/webhooks/{source}", gw.Source).Methods("POST")

	return r
}
