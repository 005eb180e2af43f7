package middleware

import (
	"net/http"
	"time"

	"github.com/Varun5711/taskapi/internal/enrichment"
	"github.com/Varun5711/taskapi/internal/logger"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// AccessLog writes one line per request. Server errors log at ERROR, client
// errors at WARN, everything else at INFO.
func AccessLog(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			line := log.
				With("request_id", GetRequestID(r.Context())).
				With("ip", getClientIP(r)).
				With("client", enrichment.ParseUserAgent(r.UserAgent()))

			format := "%s %s %d %dB %s"
			args := []interface{}{r.Method, r.URL.RequestURI(), rec.status, rec.bytes, time.Since(start).Round(time.Microsecond)}

			switch {
			case rec.status >= 500:
				line.Error(format, args...)
			case rec.status >= 400:
				line.Warn(format, args...)
			default:
				line.Info(format, args...)
			}
		})
	}
}
