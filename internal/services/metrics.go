package services

import "github.com/prometheus/client_golang/prometheus"

// Domain counters. HTTP-level traffic metrics live in the middleware; these
// track business outcomes independent of transport.
var (
	resumeUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_uploads_total",
			Help: "Resume upload attempts by outcome.",
		},
		[]string{"outcome"}, // accepted | rejected | failed
	)

	registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "candidate_registrations_total",
			Help: "Candidate registration attempts by outcome.",
		},
		[]string{"outcome"}, // registered | rejected | failed
	)
)

func init() {
	prometheus.MustRegister(resumeUploads, registrations)
}
