package httpapi

import (
	"log"
	"net/http"
	"time"
)

// statusRecorder captures the status code the handler chain writes,
// defaulting to 200 for handlers that never call WriteHeader.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now().UTC()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Printf("%s %s status=%d from=%s dur=%s", r.Method, r.URL.Path, rec.status, r.RemoteAddr, time.Since(start))
	})
}
