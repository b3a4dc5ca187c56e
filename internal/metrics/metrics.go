// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoreweb_login_attempts_total",
			Help: "Login attempts by outcome",
		},
		[]string{"outcome"},
	)

	CredentialsProvisioned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoreweb_credentials_provisioned_total",
			Help: "First logins that stored a password",
		},
	)

	// CourseTotalScore is refreshed whenever a course chart is built.
	CourseTotalScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scoreweb_course_total_score",
			Help: "Aggregate of student totals per course",
		},
		[]string{"course", "stat"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)

func ObserveCourse(course string, count int, mean, min, max float64) {
	CourseTotalScore.WithLabelValues(course, "students").Set(float64(count))
	CourseTotalScore.WithLabelValues(course, "mean").Set(mean)
	CourseTotalScore.WithLabelValues(course, "min").Set(min)
	CourseTotalScore.WithLabelValues(course, "max").Set(max)
}
