package middleware

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rengarajkamatchinathan/ig-fe/app"
)

// Logging records each request with its id, route and duration.
func Logging() app.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := app.GetRequestContext(r)
			logger := log.WithFields(log.Fields{
				"topic":   "igfe",
				"event":   "request",
				"request": rc.RequestID(),
				"method":  r.Method,
				"path":    r.URL.Path,
			})

			logger.Debug("request received")
			start := time.Now()

			h.ServeHTTP(w, r)

			logger.WithField("duration", time.Since(start).String()).Debug("request served")
		})
	}
}
