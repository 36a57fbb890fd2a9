package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/hookrelay-io/hookrelay/db"
	"github.com/hookrelay-io/hookrelay/db/dao"
	"github.com/hookrelay-io/hookrelay/db/entities"
	"github.com/hookrelay-io/hookrelay/db/query"
	"github.com/hookrelay-io/hookrelay/pkg/ucontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEndpointDAO struct {
	dao.EndpointDAO

	endpoints map[string]*entities.Endpoint
	secrets   map[string]string
}

func newFakeEndpointDAO() *fakeEndpointDAO {
	return &fakeEndpointDAO{
		endpoints: map[string]*entities.Endpoint{},
		secrets:   map[string]string{},
	}
}

func (f *fakeEndpointDAO) Get(ctx context.Context, id string) (*entities.Endpoint, error) {
	endpoint, ok := f.endpoints[id]
	if !ok {
		return nil, nil
	}
	copied := *endpoint
	return &copied, nil
}

func (f *fakeEndpointDAO) Insert(ctx context.Context, endpoint *entities.Endpoint) error {
	endpoint.OrganizationId = ucontext.GetOrganizationID(ctx)
	f.endpoints[endpoint.ID] = endpoint
	return nil
}

func (f *fakeEndpointDAO) Update(ctx context.Context, endpoint *entities.Endpoint) error {
	f.endpoints[endpoint.ID] = endpoint
	return nil
}

func (f *fakeEndpointDAO) Delete(ctx context.Context, id string) (bool, error) {
	_, ok := f.endpoints[id]
	delete(f.endpoints, id)
	return ok, nil
}

func (f *fakeEndpointDAO) UpdateSecret(ctx context.Context, id string, secret string) (bool, error) {
	endpoint, ok := f.endpoints[id]
	if !ok {
		return false, nil
	}
	endpoint.Secret = secret
	return true, nil
}

type fakeAttemptDAO struct {
	dao.AttemptDAO

	attempts []*entities.Attempt
	query    query.Queryer
}

func (f *fakeAttemptDAO) Page(ctx context.Context, q query.Queryer) ([]*entities.Attempt, int64, error) {
	f.query = q
	return f.attempts, int64(len(f.attempts)), nil
}

func newTestAPI(endpoints *fakeEndpointDAO, attempts *fakeAttemptDAO) *API {
	return NewAPI(Options{
		DB: &db.DB{
			EndpointsOrg: endpoints,
			AttemptsOrg:  attempts,
		},
	})
}

func doJSON(api *API, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, req)
	return w
}

func TestCreateEndpoint(t *testing.T) {
	endpoints := newFakeEndpointDAO()
	api := newTestAPI(endpoints, &fakeAttemptDAO{})

	w := doJSON(api, "POST", "/endpoints", map[string]interface{}{
		"url":    "https://example.com/hook",
		"events": []string{"order.created"},
	})
	require.Equal(t, 201, w.Code)

	var created struct {
		ID      string `json:"id"`
		Secret  string `json:"secret"`
		Enabled bool   `json:"enabled"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.Secret)
	assert.True(t, created.Enabled)

	// the secret is never returned after creation
	w = doJSON(api, "GET", "/endpoints/"+created.ID, nil)
	require.Equal(t, 200, w.Code)
	assert.NotContains(t, w.Body.String(), created.Secret)
	assert.NotContains(t, w.Body.String(), `"secret"`)
}

func TestCreateEndpointValidation(t *testing.T) {
	api := newTestAPI(newFakeEndpointDAO(), &fakeAttemptDAO{})

	w := doJSON(api, "POST", "/endpoints", map[string]interface{}{
		"url": "not a url",
	})
	require.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "url")
	assert.Contains(t, w.Body.String(), "events")
}

func TestGetEndpointNotFound(t *testing.T) {
	api := newTestAPI(newFakeEndpointDAO(), &fakeAttemptDAO{})

	w := doJSON(api, "GET", "/endpoints/nope", nil)
	assert.Equal(t, 404, w.Code)
}

func TestDeactivateEndpoint(t *testing.T) {
	endpoints := newFakeEndpointDAO()
	api := newTestAPI(endpoints, &fakeAttemptDAO{})

	endpoint := &entities.Endpoint{ID: "ep_1", URL: "https://example.com", Events: entities.Strings{"order.created"}, Enabled: true}
	endpoints.endpoints[endpoint.ID] = endpoint

	w := doJSON(api, "POST", "/endpoints/ep_1/deactivate", nil)
	require.Equal(t, 200, w.Code)
	assert.False(t, endpoints.endpoints["ep_1"].Enabled)
}

func TestRotateEndpointSecret(t *testing.T) {
	endpoints := newFakeEndpointDAO()
	api := newTestAPI(endpoints, &fakeAttemptDAO{})

	endpoint := &entities.Endpoint{ID: "ep_1", Secret: "old-secret", URL: "https://example.com", Events: entities.Strings{"order.created"}, Enabled: true}
	endpoints.endpoints[endpoint.ID] = endpoint

	w := doJSON(api, "POST", "/endpoints/ep_1/rotate-secret", nil)
	require.Equal(t, 200, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["secret"])
	assert.NotEqual(t, "old-secret", body["secret"])
	assert.Equal(t, body["secret"], endpoints.endpoints["ep_1"].Secret)
}

func TestDeleteEndpoint(t *testing.T) {
	endpoints := newFakeEndpointDAO()
	api := newTestAPI(endpoints, &fakeAttemptDAO{})
	endpoints.endpoints["ep_1"] = &entities.Endpoint{ID: "ep_1"}

	w := doJSON(api, "DELETE", "/endpoints/ep_1", nil)
	assert.Equal(t, 204, w.Code)
	assert.Empty(t, endpoints.endpoints)
}

func TestListEndpointAttempts(t *testing.T) {
	endpoints := newFakeEndpointDAO()
	attempts := &fakeAttemptDAO{attempts: []*entities.Attempt{
		{ID: "a_2", EndpointId: "ep_1", Status: entities.AttemptStatusSuccess},
		{ID: "a_1", EndpointId: "ep_1", Status: entities.AttemptStatusFailed},
	}}
	api := newTestAPI(endpoints, attempts)

	w := doJSON(api, "GET", "/endpoints/ep_1/attempts", nil)
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"total":2`)

	q, ok := attempts.query.(*query.AttemptQuery)
	require.True(t, ok)
	require.NotNil(t, q.EndpointId)
	assert.Equal(t, "ep_1", *q.EndpointId)
	// history reads newest first
	require.NotEmpty(t, q.Orders())
	assert.Equal(t, "id DESC", q.Orders()[0].String())
}
