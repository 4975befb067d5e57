package middleware

import (
	"net/http"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/humbertoamdc/torvek-sub000/pkg/observability"
)

// Metrics publishes request latency and error counts per route.
func Metrics(metrics *observability.Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			dimensions := map[string]string{
				"Method": r.Method,
				"Status": strconv.Itoa(ww.Status()),
			}
			metrics.RecordLatency(r.Context(), "RequestLatency", time.Since(start), dimensions)
			if ww.Status() >= 500 {
				metrics.IncrementCounter(r.Context(), "RequestErrors", dimensions)
			}
		})
	}
}
