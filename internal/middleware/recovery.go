package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/Varun5711/taskapi/internal/logger"
)

const MsgInternalError = "Internal server error"

func Recover(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					log.With("request_id", GetRequestID(r.Context())).
						Error("panic recovered on %s %s: %v\n%s", r.Method, r.URL.Path, err, debug.Stack())
					writeError(w, http.StatusInternalServerError, MsgInternalError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
