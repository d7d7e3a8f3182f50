package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rengarajkamatchinathan/ig-fe/app"
	"github.com/rengarajkamatchinathan/ig-fe/credentials"
	"github.com/rengarajkamatchinathan/ig-fe/middleware"
	"github.com/rengarajkamatchinathan/ig-fe/models"
)

type credentialResolver interface {
	Resolve(ctx context.Context, orgID int, provider models.CloudProvider) credentials.Selection
}

type CredentialHandler struct {
	cr credentialResolver
}

func NewCredentialHandler(cr credentialResolver) *CredentialHandler {
	return &CredentialHandler{cr: cr}
}

func ServeCredentialResources(router *mux.Router, cr credentialResolver, orgID int, userID int) {
	h := NewCredentialHandler(cr)

	router.Handle("/credentials/resolved", app.Adapt(
		router,
		h.GetResolved(),
		middleware.Session(orgID, userID),
		middleware.Logging(),
		app.WithRequestContext(),
	)).Methods("GET")
}

// GetResolved reports which stored credential would authorize operations
// for the given provider. A no-credential outcome is a 200 with the reason,
// not an error; the UI renders it as an explicit state.
func (ch *CredentialHandler) GetResolved() app.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := app.GetRequestContext(r)
			provider := models.CloudProvider(r.URL.Query().Get("provider"))

			selection := ch.cr.Resolve(r.Context(), rc.OrgID(), provider)
			respondJSON(w, http.StatusOK, selection)
		})
	}
}
