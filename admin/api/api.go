package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/hookrelay-io/hookrelay/config"
	"github.com/hookrelay-io/hookrelay/db"
	"github.com/hookrelay-io/hookrelay/db/query"
	"github.com/hookrelay-io/hookrelay/dispatcher"
	"github.com/hookrelay-io/hookrelay/pkg/errs"
	"github.com/hookrelay-io/hookrelay/pkg/http/middlewares"
	"github.com/hookrelay-io/hookrelay/pkg/http/response"
	"github.com/hookrelay-io/hookrelay/pkg/types"
	"go.uber.org/zap"
)

const MsgNotFound = "not found"

// API is the management surface consumed by organization members. Caller
// authentication and organization membership checks happen upstream.
type API struct {
	cfg        *config.Config
	log        *zap.SugaredLogger
	db         *db.DB
	dispatcher *dispatcher.Dispatcher
}

type Options struct {
	Config     *config.Config
	Log        *zap.SugaredLogger
	DB         *db.DB
	Dispatcher *dispatcher.Dispatcher
}

func NewAPI(opts Options) *API {
	api := &API{
		cfg:        opts.Config,
		log:        opts.Log,
		db:         opts.DB,
		dispatcher: opts.Dispatcher,
	}
	if api.log == nil {
		api.log = zap.S()
	}
	return api
}

// param returns the value of an url variable
func (api *API) param(r *http.Request, variable string) string {
	return mux.Vars(r)[variable]
}

func (api *API) json(code int, w http.ResponseWriter, data interface{}) {
	response.JSON(w, code, data)
}

func (api *API) bindQuery(r *http.Request, q *query.Query) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page_no"))
	if page <= 0 {
		page = 1
	}

	pagesize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pagesize <= 0 {
		pagesize = 20
	}

	q.Page(uint64(page), uint64(pagesize))
}

func (api *API) error(code int, w http.ResponseWriter, err error) {
	if e, ok := err.(*errs.ValidateError); ok {
		api.json(code, w, types.ErrorResponse{
			Message: "Request Validation",
			Error:   e,
		})
		return
	}
	api.json(code, w, types.ErrorResponse{Message: err.Error()})
}

func (api *API) assert(err error) {
	if err != nil {
		panic(err)
	}
}

// Handler returns a http.Handler
func (api *API) Handler() http.Handler {
	r := mux.NewRouter()

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, 404, types.ErrorResponse{Message: MsgNotFound})
	})

	r.Use(middlewares.PanicRecovery)
	r.Use(middlewares.AccessLog(api.log))
	r.Use(api.contextMiddleware)

	r.HandleFunc("/", api.Index).Methods("GET")

	for _, prefix := range []string{"", "/organizations/{organization}"} {
		r.HandleFunc(prefix+"/endpoints", api.PageEndpoint).Methods("GET")
		r.HandleFunc(prefix+"/endpoints", api.CreateEndpoint).Methods("POST")
		r.HandleFunc(prefix+"/endpoints/{id}", api.GetEndpoint).Methods("GET")
		r.HandleFunc(prefix+"/endpoints/{id}", api.UpdateEndpoint).Methods("PUT")
		r.HandleFunc(prefix+"/endpoints/{id}", api.DeleteEndpoint).Methods("DELETE")
		r.HandleFunc(prefix+"/endpoints/{id}/deactivate", api.DeactivateEndpoint).Methods("POST")
		r.HandleFunc(prefix+"/endpoints/{id}/rotate-secret", api.RotateEndpointSecret).Methods("POST")
		r.HandleFunc(prefix+"/endpoints/{id}/test", api.TestEndpoint).Methods("POST")
		r.HandleFunc(prefix+"/endpoints/{id}/attempts", api.ListEndpointAttempts).Methods("GET")

		r.HandleFunc(prefix+"/events", api.PageEvent).Methods("GET")
		r.HandleFunc(prefix+"/events", api.CreateEvent).Methods("POST")
		r.HandleFunc(prefix+"/events/{id}", api.GetEvent).Methods("GET")

		r.HandleFunc(prefix+"/attempts", api.PageAttempt).Methods("GET")
		r.HandleFunc(prefix+"/attempts/{id}", api.GetAttempt).Methods("GET")
	}

	return r
}

func (api *API) Index(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"version": config.VERSION,
	}
	if err := api.db.Ping(); err != nil {
		info["database"] = "unreachable"
		api.json(503, w, info)
		return
	}
	info["database"] = "ok"
	api.json(200, w, info)
}
