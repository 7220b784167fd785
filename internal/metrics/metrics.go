// Package metrics exposes the prometheus instruments of the service.
// Every Record method is nil-safe so services can run without metrics in tests.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const namespace = "aguaya"

// Operaciones de liquidación.
const (
	OperacionPagoVales   = "pago_vales"
	OperacionPagoMensual = "pago_mensual"
)

type Metrics struct {
	httpDuration   *prometheus.HistogramVec
	liquidaciones  *prometheus.CounterVec
	montoLiquidado *prometheus.CounterVec
	alertas        *prometheus.GaugeVec
	jobs           *prometheus.CounterVec
}

// New registers the instruments on reg. Pass prometheus.DefaultRegisterer in
// production and prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		liquidaciones: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "liquidaciones_total",
			Help:      "Settlement attempts by operation and result.",
		}, []string{"operacion", "resultado"}),
		montoLiquidado: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "monto_liquidado_soles_total",
			Help:      "Amount settled, in soles.",
		}, []string{"operacion"}),
		alertas: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alertas",
			Help:      "Items per alert bucket at the last sweep.",
		}, []string{"bucket"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Background jobs processed by type and result.",
		}, []string{"tipo", "resultado"}),
	}
	reg.MustRegister(m.httpDuration, m.liquidaciones, m.montoLiquidado, m.alertas, m.jobs)
	return m
}

// RecordLiquidacion counts one settlement; monto is only added on success.
func (m *Metrics) RecordLiquidacion(operacion string, monto decimal.Decimal, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.liquidaciones.WithLabelValues(operacion, "error").Inc()
		return
	}
	m.liquidaciones.WithLabelValues(operacion, "ok").Inc()
	f, _ := monto.Float64()
	m.montoLiquidado.WithLabelValues(operacion).Add(f)
}

// SetAlertas publishes the size of one alert bucket.
func (m *Metrics) SetAlertas(bucket string, n int) {
	if m == nil {
		return
	}
	m.alertas.WithLabelValues(bucket).Set(float64(n))
}

func (m *Metrics) RecordJob(tipo string, err error) {
	if m == nil {
		return
	}
	resultado := "ok"
	if err != nil {
		resultado = "error"
	}
	m.jobs.WithLabelValues(tipo, resultado).Inc()
}

// GinMiddleware observes request latency labelled by the route template.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
