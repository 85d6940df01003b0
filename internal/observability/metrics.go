package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	apiRequestsTotal   *prometheus.CounterVec
	apiLatencySeconds  *prometheus.HistogramVec
	apiErrorsTotal     *prometheus.CounterVec
	submissionsTotal   *prometheus.CounterVec
	submissionSeconds  prometheus.Histogram
	yearTransitionsTot prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lavang_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lavang_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lavang_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lavang_enrollment_submissions_total",
			Help: "Total number of enrollment submissions processed.",
		}, []string{"outcome"})

		submissionSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lavang_enrollment_submission_seconds",
			Help:    "Duration of enrollment submission transactions.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		})

		yearTransitionsTot = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lavang_school_year_transitions_total",
			Help: "Total number of school year transitions performed.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			submissionsTotal,
			submissionSeconds,
			yearTransitionsTot,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// EnrollmentSubmissions exposes the counter for processed submissions.
func EnrollmentSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// EnrollmentSubmissionDuration exposes the submission latency histogram.
func EnrollmentSubmissionDuration() prometheus.Histogram {
	RegisterMetrics()
	return submissionSeconds
}

// SchoolYearTransitions exposes the counter for year transitions.
func SchoolYearTransitions() prometheus.Counter {
	RegisterMetrics()
	return yearTransitionsTot
}
