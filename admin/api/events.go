package api

import (
	"encoding/json"
	"net/http"

	"github.com/hookrelay-io/hookrelay/db/entities"
	"github.com/hookrelay-io/hookrelay/db/query"
	"github.com/hookrelay-io/hookrelay/pkg/types"
	"github.com/hookrelay-io/hookrelay/pkg/ucontext"
)

func (api *API) PageEvent(w http.ResponseWriter, r *http.Request) {
	var q query.EventQuery
	q.Order("id", query.DESC)
	api.bindQuery(r, &q.Query)
	if v := r.URL.Query().Get("event_type"); v != "" {
		q.EventType = &v
	}
	list, total, err := api.db.EventsOrg.Page(r.Context(), &q)
	api.assert(err)

	api.json(200, w, types.NewPagination(total, list))
}

func (api *API) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := api.param(r, "id")
	event, err := api.db.EventsOrg.Get(r.Context(), id)
	api.assert(err)

	if event == nil {
		api.json(404, w, types.ErrorResponse{Message: MsgNotFound})
		return
	}

	api.json(200, w, event)
}

// CreateEvent ingests an event and fans it out to subscribed endpoints.
func (api *API) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var event entities.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		api.error(400, w, err)
		return
	}
	event.Init()

	if err := event.Validate(); err != nil {
		api.error(400, w, err)
		return
	}

	event.OrganizationId = ucontext.GetOrganizationID(r.Context())
	err := api.dispatcher.Dispatch(r.Context(), &event)
	api.assert(err)

	api.json(201, w, event)
}
