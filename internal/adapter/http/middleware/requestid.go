package middleware

import (
	"net/http"

	wrap "github.com/cliniktrak/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an id for log correlation. An id
// supplied by the client is kept; otherwise a fresh one is generated.
func (h *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.MustNew().String()
		}

		w.Header().Set(requestIDHeader, id)

		ctx := wrap.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
