package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type JobMetrics struct {
	RunsTotal   *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec
}

type PurgeMetrics struct {
	CustomersDeletedTotal prometheus.Counter
	LastRunDeleted        prometheus.Gauge
}

type ReportMetrics struct {
	Customers prometheus.Gauge
	Orders    prometheus.Gauge
	Revenue   prometheus.Gauge
}

type BusinessMetrics struct {
	CustomersCreatedTotal  prometheus.Counter
	OrdersCreatedTotal     prometheus.Counter
	ProductsRestockedTotal prometheus.Counter
	RemindersLoggedTotal   prometheus.Counter
}

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

var (
	Jobs = JobMetrics{
		RunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_engine_job_runs_total",
				Help: "Total number of batch job runs by job name and outcome.",
			},
			[]string{"job", "status"},
		),
		RunDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crm_engine_job_run_duration_seconds",
				Help:    "Histogram of batch job run durations.",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"job"},
		),
	}

	Purge = PurgeMetrics{
		CustomersDeletedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crm_engine_customers_purged_total",
				Help: "Total number of inactive customers deleted by the cleanup job.",
			},
		),
		LastRunDeleted: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "crm_engine_purge_last_run_deleted",
				Help: "Number of customers deleted by the most recent cleanup run.",
			},
		),
	}

	Report = ReportMetrics{
		Customers: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "crm_engine_report_customers",
				Help: "Total customers as of the last generated report.",
			},
		),
		Orders: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "crm_engine_report_orders",
				Help: "Total orders as of the last generated report.",
			},
		),
		Revenue: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "crm_engine_report_revenue",
				Help: "Total revenue as of the last generated report.",
			},
		),
	}

	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crm_engine_db_query_duration_seconds",
				Help:    "Histogram of database query durations by query name and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"query", "status"},
		),
	}

	Business = BusinessMetrics{
		CustomersCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crm_engine_customers_created_total",
				Help: "Total number of customers successfully created.",
			},
		),
		OrdersCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crm_engine_orders_created_total",
				Help: "Total number of orders successfully created.",
			},
		),
		ProductsRestockedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crm_engine_products_restocked_total",
				Help: "Total number of products topped up by the restock job.",
			},
		),
		RemindersLoggedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crm_engine_order_reminders_total",
				Help: "Total number of order reminders written to the reminder log.",
			},
		),
	}
)

func RecordDBQuery(query, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(query, status).Observe(duration.Seconds())
}

func RecordJobRun(job, status string, duration time.Duration) {
	Jobs.RunsTotal.WithLabelValues(job, status).Inc()
	Jobs.RunDuration.WithLabelValues(job).Observe(duration.Seconds())
}

func RecordCustomersPurged(count int64) {
	Purge.CustomersDeletedTotal.Add(float64(count))
	Purge.LastRunDeleted.Set(float64(count))
}

func RecordReportTotals(customers, orders int64, revenue float64) {
	Report.Customers.Set(float64(customers))
	Report.Orders.Set(float64(orders))
	Report.Revenue.Set(revenue)
}

func RecordCustomerCreated() {
	Business.CustomersCreatedTotal.Inc()
}

func RecordOrderCreated() {
	Business.OrdersCreatedTotal.Inc()
}

func RecordProductsRestocked(count int) {
	Business.ProductsRestockedTotal.Add(float64(count))
}

func RecordReminderLogged() {
	Business.RemindersLoggedTotal.Inc()
}
