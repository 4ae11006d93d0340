package metrics

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics набор Prometheus-коллекторов сервиса
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
	DBOpenConns     prometheus.Gauge
	DBInUseConns    prometheus.Gauge
	DBIdleConns     prometheus.Gauge
	DBWaitCount     prometheus.Gauge

	BookingsCreated    prometheus.Counter
	BookingConflicts   prometheus.Counter
	AvailabilityChecks *prometheus.CounterVec
	BookingsSwept      prometheus.Counter
	AssessmentsOverdue prometheus.Counter
}

// New создает и регистрирует коллекторы в собственном реестре
func New(serviceName string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "Duration of HTTP requests in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "path"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Duration of database queries in seconds",
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			ConstLabels: constLabels,
		}, []string{"operation"}),
		DBQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Total number of failed database queries",
			ConstLabels: constLabels,
		}, []string{"operation"}),
		DBOpenConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: constLabels,
		}),
		DBInUseConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}),
		DBIdleConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: constLabels,
		}),
		DBWaitCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}),
		BookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "bookings_created_total",
			Help:        "Total number of created bookings",
			ConstLabels: constLabels,
		}),
		BookingConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "booking_conflicts_total",
			Help:        "Total number of booking attempts rejected because of overlap",
			ConstLabels: constLabels,
		}),
		AvailabilityChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "availability_checks_total",
			Help:        "Total number of availability checks by result",
			ConstLabels: constLabels,
		}, []string{"result"}),
		BookingsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "bookings_swept_total",
			Help:        "Total number of bookings marked as missed by the sweeper",
			ConstLabels: constLabels,
		}),
		AssessmentsOverdue: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "assessments_overdue_total",
			Help:        "Total number of assessments marked as overdue",
			ConstLabels: constLabels,
		}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBQueryErrors,
		m.DBOpenConns,
		m.DBInUseConns,
		m.DBIdleConns,
		m.DBWaitCount,
		m.BookingsCreated,
		m.BookingConflicts,
		m.AvailabilityChecks,
		m.BookingsSwept,
		m.AssessmentsOverdue,
	)

	return m
}

// Handler возвращает HTTP-обработчик для /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTPRequest фиксирует выполненный HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует выполненный запрос к БД
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// IncBookingsCreated увеличивает счетчик созданных бронирований
func (m *Metrics) IncBookingsCreated() {
	if m == nil {
		return
	}
	m.BookingsCreated.Inc()
}

// IncBookingConflicts увеличивает счетчик конфликтов при бронировании
func (m *Metrics) IncBookingConflicts() {
	if m == nil {
		return
	}
	m.BookingConflicts.Inc()
}

// ObserveAvailabilityCheck фиксирует результат проверки доступности
func (m *Metrics) ObserveAvailabilityCheck(available bool) {
	if m == nil {
		return
	}
	result := "busy"
	if available {
		result = "available"
	}
	m.AvailabilityChecks.WithLabelValues(result).Inc()
}

// AddBookingsSwept увеличивает счетчик бронирований, помеченных как missed
func (m *Metrics) AddBookingsSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BookingsSwept.Add(float64(n))
}

// AddAssessmentsOverdue увеличивает счетчик просроченных заданий
func (m *Metrics) AddAssessmentsOverdue(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.AssessmentsOverdue.Add(float64(n))
}

// SetPoolStats обновляет показатели пула соединений
func (m *Metrics) SetPoolStats(stats sql.DBStats) {
	if m == nil {
		return
	}
	m.DBOpenConns.Set(float64(stats.OpenConnections))
	m.DBInUseConns.Set(float64(stats.InUse))
	m.DBIdleConns.Set(float64(stats.Idle))
	m.DBWaitCount.Set(float64(stats.WaitCount))
}
