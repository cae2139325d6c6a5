package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

const slowRequest = 2 * time.Second

// RequestLogger logs one entry per request and warns when it was slow.
func RequestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry := log.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"duration_ms": elapsed.Milliseconds(),
				"request_id":  middleware.GetReqID(r.Context()),
			})

			switch {
			case elapsed > slowRequest:
				entry.Warn("slow request")
			case status >= http.StatusInternalServerError:
				entry.Error("request failed")
			default:
				entry.Info("request")
			}
		})
	}
}
