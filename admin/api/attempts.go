package api

import (
	"net/http"

	"github.com/hookrelay-io/hookrelay/db/query"
	"github.com/hookrelay-io/hookrelay/pkg/types"
)

func (api *API) PageAttempt(w http.ResponseWriter, r *http.Request) {
	var q query.AttemptQuery
	q.Order("id", query.DESC)
	api.bindQuery(r, &q.Query)
	if v := r.URL.Query().Get("event_id"); v != "" {
		q.EventId = &v
	}
	if v := r.URL.Query().Get("endpoint_id"); v != "" {
		q.EndpointId = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		q.Status = &v
	}
	list, total, err := api.db.AttemptsOrg.Page(r.Context(), &q)
	api.assert(err)

	api.json(200, w, types.NewPagination(total, list))
}

func (api *API) GetAttempt(w http.ResponseWriter, r *http.Request) {
	id := api.param(r, "id")
	attempt, err := api.db.AttemptsOrg.Get(r.Context(), id)
	api.assert(err)

	if attempt == nil {
		api.json(404, w, types.ErrorResponse{Message: MsgNotFound})
		return
	}

	api.json(200, w, attempt)
}
