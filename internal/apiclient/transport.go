// transport.go — единая точка перехвата исходящих запросов:
// bearer-токен, X-Request-ID и Prometheus-метрики обращений к backend.
package apiclient

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Заголовок идентификатора запроса для сквозной трассировки в логах backend.
const requestIDHeader = "X-Request-ID"

// Метрики обращений к backend.
var (
	backendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dc_backend_requests_total",
			Help: "Общее количество запросов doc-console к backend-сервисам",
		},
		[]string{"service", "method", "status"},
	)

	backendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dc_backend_request_duration_seconds",
			Help:    "Длительность запросов doc-console к backend-сервисам в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)
)

// bearerTransport добавляет Authorization: Bearer <token>, если токен есть,
// и удаляет заголовок, если токена нет.
type bearerTransport struct {
	service string
	base    http.RoundTripper
	tokens  TokenSource
}

func newBearerTransport(service string, base http.RoundTripper, tokens TokenSource) *bearerTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &bearerTransport{service: service, base: base, tokens: tokens}
}

// RoundTrip реализует http.RoundTripper. Исходный запрос не изменяется.
func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())

	if token := t.tokens.Token(req.Context()); token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	} else {
		out.Header.Del("Authorization")
	}

	if out.Header.Get(requestIDHeader) == "" {
		out.Header.Set(requestIDHeader, uuid.NewString())
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(out)
	backendRequestDuration.WithLabelValues(t.service).Observe(time.Since(start).Seconds())

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	backendRequestsTotal.WithLabelValues(t.service, out.Method, status).Inc()

	return resp, err
}
