package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hookrelay-io/hookrelay/constants"
	"github.com/hookrelay-io/hookrelay/pkg/ucontext"
)

// contextMiddleware resolves the organization every request is scoped to.
// Membership authorization is enforced upstream of this API.
func (api *API) contextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		org := mux.Vars(r)["organization"]
		if org == "" {
			org = constants.DefaultOrganization
		}

		ctx := ucontext.WithContext(r.Context(), &ucontext.UContext{
			OrganizationID: org,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
