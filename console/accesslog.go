package console

import (
	"net/http"

	"github.com/felixge/httpsnoop"
)

// accessLog logs one line per request with the status, bytes written and latency.
func accessLog(logger *ConsoleLogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		if m.Code >= http.StatusInternalServerError {
			logger.Error("%s %s -> %d (%d bytes, %s)", r.Method, r.URL.Path, m.Code, m.Written, m.Duration)
			return
		}
		logger.Info("%s %s -> %d (%d bytes, %s)", r.Method, r.URL.Path, m.Code, m.Written, m.Duration)
	})
}
