// Package requestid assigns every inbound request an identifier that follows
// it through the gateway, upstream calls and subgraph logs.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"gfde/pkg/requestcontext"
)

// Middleware reuses an inbound X-Request-ID (set by the gateway when calling a
// subgraph) or generates a new one, and echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestcontext.RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestcontext.RequestIDHeader, reqID)
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
