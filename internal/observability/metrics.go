// Package observability exposes Prometheus metrics for document
// processing and fiscal audits.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DocumentosProcessados counts processed uploads by document type and
	// resulting status.
	DocumentosProcessados = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fiscal",
		Name:      "documentos_processados_total",
		Help:      "Documentos fiscais processados, por tipo e status.",
	}, []string{"tipo", "status"})

	// ConfiancaExtracao observes the confidence score of each extraction.
	ConfiancaExtracao = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fiscal",
		Name:      "confianca_extracao",
		Help:      "Score de confiança (0-100) das extrações.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	})

	// AuditoriasRealizadas counts SPED audits by audit type.
	AuditoriasRealizadas = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fiscal",
		Name:      "auditorias_realizadas_total",
		Help:      "Auditorias SPED executadas, por tipo.",
	}, []string{"tipo"})

	// ScoreConformidade observes the conformity score of each audit.
	ScoreConformidade = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fiscal",
		Name:      "score_conformidade",
		Help:      "Score de conformidade (0-100) das auditorias.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fiscal",
		Name:      "http_request_duration_seconds",
		Help:      "Duração das requisições HTTP.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "code"})
)

// MetricsHandler serves the /metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// HTTPMetrics records request duration per method, route and status code.
// Must be installed with router.Use so the matched route template is
// available as label instead of the raw path.
func HTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		inicio := time.Now()

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		httpDuration.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).
			Observe(time.Since(inicio).Seconds())
	})
}
