package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/volley/pkg/metrics"
)

// errorLabels maps the statuses the handlers produce onto metric labels.
var errorLabels = map[int]string{
	http.StatusBadRequest:            "bad_request",
	http.StatusNotFound:              "not_found",
	http.StatusMethodNotAllowed:      "method_not_allowed",
	http.StatusConflict:              "conflict",
	http.StatusRequestEntityTooLarge: "too_large",
	http.StatusTooManyRequests:       "backpressure",
	http.StatusServiceUnavailable:    "unavailable",
	http.StatusGatewayTimeout:        "timeout",
}

// MetricsMiddleware records request count, latency and error labels for an
// endpoint. A panicking handler is answered with 500 and counted as one.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if rec := recover(); rec != nil {
				metrics.RecordErrorByComponent("http", "panic")
				if !sw.wrote {
					writeError(sw, http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %v", endpoint, rec))
				}
			}

			code := strconv.Itoa(sw.status)
			metrics.RecordHTTPRequest(endpoint, r.Method, code)
			metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, float64(time.Since(start).Milliseconds()))
			if sw.status >= http.StatusBadRequest {
				label := errorLabel(sw.status)
				metrics.RecordErrorByEndpoint(endpoint, r.Method, label)
				metrics.RecordErrorByComponent("http", label)
			}
		}()

		next(sw, r)
	}
}

func errorLabel(status int) string {
	if l, ok := errorLabels[status]; ok {
		return l
	}
	if status >= http.StatusInternalServerError {
		return "server_error"
	}
	return "client_error"
}

// statusWriter captures the response status.
type statusWriter struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if sw.wrote {
		return
	}
	sw.status = code
	sw.wrote = true
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	sw.wrote = true
	n, err := sw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}
