package middleware

import (
	"context"
	"net/http"

	"github.com/Varun5711/taskapi/internal/idgen"
)

const (
	RequestIDHeader = "X-Request-ID"

	requestIDKey  contextKey = "request_id"
	maxRequestID             = 128
)

// RequestID keeps a caller-supplied X-Request-ID or issues a new one, and
// echoes it on the response.
func RequestID(gen *idgen.Generator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" || len(id) > maxRequestID {
				id = gen.NextString()
			}

			w.Header().Set(RequestIDHeader, id)
			ctx := context.WithValue(r.Context(), requestIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
