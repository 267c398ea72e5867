package httpx

import (
	"net/http"
	"strings"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/slogx"
)

// Middleware wraps an http.Handler with additional behaviour.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to a handler in reverse order, so the first
// middleware in the list is the outermost wrapper.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RecoverMiddleware converts panics into a masked 500 response so internals
// never leak to the caller. Paths under one of jsonPrefixes get a JSON body;
// everything else gets a minimal HTML page.
func RecoverMiddleware(jsonPrefixes ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				slogx.FromContext(r.Context()).Error("panic recovered",
					"panic", rec,
					"path", r.URL.Path,
				)

				for _, prefix := range jsonPrefixes {
					if strings.HasPrefix(r.URL.Path, prefix) {
						WriteError(w, http.StatusInternalServerError, "Unexpected server error")
						return
					}
				}
				WriteHTML(w, http.StatusInternalServerError, "<h3>Unexpected server error</h3>")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
