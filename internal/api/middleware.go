package api

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestLog tags each request with an ID and logs method, path, status
// and duration once the handler returns.
func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(rec, r)

		log.Printf("%s %s %s status=%d duration=%s", id[:8], r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
