package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rengarajkamatchinathan/ig-fe/app"
)

// Session injects the acting org and user ids into the RequestContext.
// Defaults come from server configuration; the X-Org-Id and X-User-Id
// headers override them per request. Token issuance and expiry live
// upstream, this tier only consumes the ids.
func Session(orgID int, userID int) app.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := app.GetRequestContext(r)

			rc.SetOrgID(headerOverride(r, "X-Org-Id", orgID))
			rc.SetUserID(headerOverride(r, "X-User-Id", userID))

			ctx := context.WithValue(r.Context(), app.RequestContextKey, rc)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func headerOverride(r *http.Request, header string, fallback int) int {
	raw := r.Header.Get(header)
	if raw == "" {
		return fallback
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return fallback
	}
	return id
}
