package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/poofware/application-service/internal/utils"
)

// RequestRecorder receives one observation per served request.
type RequestRecorder interface {
	RecordRequest(route, method string, status int, elapsed time.Duration)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware records status and latency per route template and logs
// each request at debug level. Install it with router.Use so the matched
// route is available.
func MetricsMiddleware(rec RequestRecorder) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			elapsed := time.Since(start)
			rec.RecordRequest(route, r.Method, sw.status, elapsed)

			utils.Logger.WithFields(logrus.Fields{
				"route":   route,
				"method":  r.Method,
				"status":  sw.status,
				"elapsed": elapsed.String(),
			}).Debug("Request served")
		})
	}
}
