package api

import (
	"encoding/json"
	"net/http"

	"github.com/hookrelay-io/hookrelay/db/entities"
	"github.com/hookrelay-io/hookrelay/db/query"
	"github.com/hookrelay-io/hookrelay/pkg/types"
	"github.com/hookrelay-io/hookrelay/pkg/ucontext"
	"github.com/hookrelay-io/hookrelay/utils"
)

// createdEndpoint carries the secret exactly once, in the creation response.
type createdEndpoint struct {
	*entities.Endpoint
	Secret string `json:"secret"`
}

func (api *API) PageEndpoint(w http.ResponseWriter, r *http.Request) {
	var q query.EndpointQuery
	q.Order("id", query.DESC)
	api.bindQuery(r, &q.Query)
	list, total, err := api.db.EndpointsOrg.Page(r.Context(), &q)
	api.assert(err)

	api.json(200, w, types.NewPagination(total, list))
}

func (api *API) GetEndpoint(w http.ResponseWriter, r *http.Request) {
	id := api.param(r, "id")
	endpoint, err := api.db.EndpointsOrg.Get(r.Context(), id)
	api.assert(err)

	if endpoint == nil {
		api.json(404, w, types.ErrorResponse{Message: MsgNotFound})
		return
	}

	api.json(200, w, endpoint)
}

func (api *API) CreateEndpoint(w http.ResponseWriter, r *http.Request) {
	var endpoint entities.Endpoint
	if err := json.NewDecoder(r.Body).Decode(&endpoint); err != nil {
		api.error(400, w, err)
		return
	}
	endpoint.Init()

	if err := endpoint.Validate(); err != nil {
		api.error(400, w, err)
		return
	}

	endpoint.OrganizationId = ucontext.GetOrganizationID(r.Context())
	err := api.db.EndpointsOrg.Insert(r.Context(), &endpoint)
	api.assert(err)

	api.json(201, w, createdEndpoint{Endpoint: &endpoint, Secret: endpoint.Secret})
}

func (api *API) UpdateEndpoint(w http.ResponseWriter, r *http.Request) {
	id := api.param(r, "id")
	endpoint, err := api.db.EndpointsOrg.Get(r.Context(), id)
	api.assert(err)
	if endpoint == nil {
		api.json(404, w, types.ErrorResponse{Message: MsgNotFound})
		return
	}

	if err := json.NewDecoder(r.Body).Decode(endpoint); err != nil {
		api.error(400, w, err)
		return
	}

	if err := endpoint.Validate(); err != nil {
		api.error(400, w, err)
		return
	}

	endpoint.ID = id
	err = api.db.EndpointsOrg.Update(r.Context(), endpoint)
	api.assert(err)

	api.json(200, w, endpoint)
}

// DeleteEndpoint removes the endpoint. Attempt rows are preserved as history
// with a dangling endpoint id.
func (api *API) DeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	id := api.param(r, "id")
	_, err := api.db.EndpointsOrg.Delete(r.Context(), id)
	api.assert(err)

	w.WriteHeader(204)
}

func (api *API) DeactivateEndpoint(w http.ResponseWriter, r *http.Request) {
	id := api.param(r, "id")
	endpoint, err := api.db.EndpointsOrg.Get(r.Context(), id)
	api.assert(err)
	if endpoint == nil {
		api.json(404, w, types.ErrorResponse{Message: MsgNotFound})
		return
	}

	endpoint.Enabled = false
	err = api.db.EndpointsOrg.Update(r.Context(), endpoint)
	api.assert(err)

	api.json(200, w, endpoint)
}

// RotateEndpointSecret invalidates the old secret for new deliveries.
// Attempts already queued sign with the endpoint's secret at send time, so
// they pick up the rotation as well.
func (api *API) RotateEndpointSecret(w http.ResponseWriter, r *http.Request) {
	id := api.param(r, "id")
	endpoint, err := api.db.EndpointsOrg.Get(r.Context(), id)
	api.assert(err)
	if endpoint == nil {
		api.json(404, w, types.ErrorResponse{Message: MsgNotFound})
		return
	}

	secret := utils.Secret(24)
	ok, err := api.db.EndpointsOrg.UpdateSecret(r.Context(), id, secret)
	api.assert(err)
	if !ok {
		api.json(404, w, types.ErrorResponse{Message: MsgNotFound})
		return
	}

	api.json(200, w, map[string]string{"secret": secret})
}

// TestEndpoint sends a synthetic event through the normal delivery pipeline,
// regardless of the endpoint's subscriptions.
func (api *API) TestEndpoint(w http.ResponseWriter, r *http.Request) {
	id := api.param(r, "id")
	endpoint, err := api.db.EndpointsOrg.Get(r.Context(), id)
	api.assert(err)
	if endpoint == nil {
		api.json(404, w, types.ErrorResponse{Message: MsgNotFound})
		return
	}

	event := &entities.Event{
		EventType: "webhook.test",
		Data:      json.RawMessage(`{"ping": true}`),
	}
	_ = json.NewDecoder(r.Body).Decode(event) // optional overrides
	event.Init()
	event.OrganizationId = ucontext.GetOrganizationID(r.Context())

	err = api.dispatcher.DispatchEndpoint(r.Context(), event, []*entities.Endpoint{endpoint})
	api.assert(err)

	api.json(200, w, event)
}

// ListEndpointAttempts returns the delivery history, newest first.
func (api *API) ListEndpointAttempts(w http.ResponseWriter, r *http.Request) {
	id := api.param(r, "id")

	var q query.AttemptQuery
	q.EndpointId = &id
	q.Order("id", query.DESC)
	api.bindQuery(r, &q.Query)
	list, total, err := api.db.AttemptsOrg.Page(r.Context(), &q)
	api.assert(err)

	api.json(200, w, types.NewPagination(total, list))
}
