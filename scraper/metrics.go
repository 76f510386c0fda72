package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aluiziolira/go-bestsellers/models"
)

// Metrics bundles Prometheus collectors for the scraper.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	CacheLookups    *prometheus.CounterVec
	ListingsTotal   prometheus.Counter
	RecordsTotal    prometheus.Counter
	MissingFields   *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bestsellers_requests_total",
			Help: "Total HTTP requests issued by the scraper.",
		},
		[]string{"host"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bestsellers_request_duration_seconds",
			Help:    "HTTP request latency for scraper requests.",
			Buckets: prometheus.DefBuckets,
		},
	)
	cacheLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bestsellers_cache_lookups_total",
			Help: "Request cache lookups by result.",
		},
		[]string{"result"},
	)
	listings := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bestsellers_listings_total",
			Help: "Total number of book listings extracted.",
		},
	)
	records := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bestsellers_retailer_records_total",
			Help: "Total number of retailer records extracted.",
		},
	)
	missing := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bestsellers_retailer_missing_fields_total",
			Help: "Retailer fields left empty because the page did not provide them.",
		},
		[]string{"field"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bestsellers_errors_total",
			Help: "Total number of scraper errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(requests, requestDuration, cacheLookups, listings, records, missing, errorsTotal)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: requestDuration,
		CacheLookups:    cacheLookups,
		ListingsTotal:   listings,
		RecordsTotal:    records,
		MissingFields:   missing,
		ErrorsTotal:     errorsTotal,
	}
}

// IncRequest increments the requests counter for a host.
func (m *Metrics) IncRequest(host string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(host).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// ObserveCache records a request cache lookup.
func (m *Metrics) ObserveCache(_ string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// AddListings adds n extracted listings.
func (m *Metrics) AddListings(n int) {
	if m == nil {
		return
	}
	m.ListingsTotal.Add(float64(n))
}

// ObserveRecord counts a retailer record and its absent fields.
func (m *Metrics) ObserveRecord(rec models.RetailerRecord) {
	if m == nil {
		return
	}
	m.RecordsTotal.Inc()
	fields := map[string]bool{
		"title":         rec.Title.Valid,
		"rating":        rec.Rating.Valid,
		"price":         rec.Price.Valid,
		"genre":         rec.Genre.Valid,
		"released_date": rec.ReleaseDate.Valid,
		"language":      rec.Language.Valid,
		"length":        rec.Length.Valid,
		"seller":        rec.Seller.Valid,
		"size":          rec.Size.Valid,
	}
	for field, present := range fields {
		if !present {
			m.MissingFields.WithLabelValues(field).Inc()
		}
	}
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
