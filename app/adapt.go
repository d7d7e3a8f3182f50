package app

import (
	"net/http"
)

type Adapter func(http.Handler) http.Handler

// Adapt wraps h in the given adapters. The last adapter listed is the
// outermost wrapper, so list them innermost first.
func Adapt(h http.Handler, adapters ...Adapter) http.Handler {
	for _, adapter := range adapters {
		h = adapter(h)
	}
	return h
}
