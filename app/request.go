package app

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// The RequestContext is passed as an *http.Request WithValue() for
// the requestContextKey. It carries request identity plus the session
// org/user ids the session middleware injects.
type requestContextKeyType struct{}

var RequestContextKey requestContextKeyType

// Middleware to add information contextual to the request by including
// it in the *http.Request context
func WithRequestContext() Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := NewRequestContext(r.Context(), r)
			ctx := context.WithValue(r.Context(), RequestContextKey, rc)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type RequestContext struct {
	requestTime time.Time
	requestID   string
	orgID       int
	userID      int
}

func NewRequestContext(ctx context.Context, req *http.Request) RequestContext {
	uuid := uuid.Must(uuid.NewRandom())

	rc := RequestContext{
		requestID:   uuid.String(),
		requestTime: time.Now(),
	}

	return rc
}

func GetRequestContext(r *http.Request) RequestContext {
	return r.Context().Value(RequestContextKey).(RequestContext)
}

func (rc *RequestContext) RequestTime() time.Time {
	return rc.requestTime
}

func (rc *RequestContext) RequestID() string {
	return rc.requestID
}

func (rc *RequestContext) OrgID() int {
	return rc.orgID
}

func (rc *RequestContext) SetOrgID(id int) {
	rc.orgID = id
}

func (rc *RequestContext) UserID() int {
	return rc.userID
}

func (rc *RequestContext) SetUserID(id int) {
	rc.userID = id
}
