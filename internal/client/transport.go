package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/logging"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const requestIDHeader = "X-Request-ID"

// loggingTransport tags every outgoing request with a correlation id and logs
// its outcome with a request-scoped logger.
type loggingTransport struct {
	next http.RoundTripper
}

func (t *loggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()

	correlationID := r.Header.Get(requestIDHeader)
	if correlationID == "" {
		correlationID = uuid.NewString()
		r = r.Clone(r.Context())
		r.Header.Set(requestIDHeader, correlationID)
	}

	requestLogger := logging.FromContext(r.Context()).With(
		slog.String("correlation_id", correlationID),
		slog.String("http_method", r.Method),
		slog.String("http_path", r.URL.Path),
	)

	requestLogger.Debug("Outgoing request")

	resp, err := t.next.RoundTrip(r)
	if err != nil {
		requestLogger.Warn("Request failed", slog.String("error", err.Error()), slog.Duration("duration", time.Since(start)))
		return nil, err
	}

	requestLogger.Info("Request completed", slog.Int("http_status", resp.StatusCode), slog.Duration("duration", time.Since(start)))

	return resp, nil
}

// NewTransport chains tracing, metrics and logging around base.
func NewTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	return otelhttp.NewTransport(metrics.InstrumentRoundTripper(&loggingTransport{next: base}))
}
