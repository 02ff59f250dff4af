package http

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/tomora/internal/http/middlewares"
	"github.com/dropDatabas3/tomora/internal/metrics"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
)

// RegisterMetrics inicializa las métricas HTTP + OAuth y devuelve el handler
// para /metrics.
func RegisterMetrics(registry prometheus.Registerer) (http.Handler, error) {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		for _, c := range []prometheus.Collector{httpRequestsTotal, httpRequestDuration} {
			if err := registry.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					metricsErr = err
					return
				}
			}
		}
		metricsErr = metrics.RegisterOAuth(registry)
	})
	if metricsErr != nil {
		return nil, metricsErr
	}

	return promhttp.Handler(), nil
}

// WithMetrics instrumenta cada request (counter + histograma de latencia).
// path usa el patrón de la ruta, no la URL cruda, para acotar cardinalidad.
func WithMetrics(path string) middlewares.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if httpRequestsTotal == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			rec := &metricsRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

type metricsRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (m *metricsRecorder) WriteHeader(code int) {
	if m.wroteHeader {
		return
	}
	m.status = code
	m.wroteHeader = true
	m.ResponseWriter.WriteHeader(code)
}

func (m *metricsRecorder) Write(b []byte) (int, error) {
	if !m.wroteHeader {
		m.status = http.StatusOK
		m.wroteHeader = true
	}
	return m.ResponseWriter.Write(b)
}
