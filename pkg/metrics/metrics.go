// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes used as the "outcome" label of Submissions.
const (
	OutcomeAccepted      = "accepted"
	OutcomeInvalidInput  = "invalid_input"
	OutcomeSendFailed    = "send_failed"
	OutcomeInternalError = "internal_error"
)

var (
	Submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "formrelay_submissions_total",
		Help: "Total number of form submissions handled, by outcome",
	}, []string{"outcome"})

	// Mail metrics
	MailSendSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "formrelay_mail_send_success_total",
		Help: "Total number of successful mail sends",
	}, []string{"host"})
	MailSendFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "formrelay_mail_send_failure_total",
		Help: "Total number of failed mail sends",
	}, []string{"host"})
	MailSendDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "formrelay_mail_send_duration_seconds",
		Help:    "Duration of a complete SMTP session (dial to quit)",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"host"})
)

func init() {
	prometheus.MustRegister(Submissions)
	prometheus.MustRegister(MailSendSuccess)
	prometheus.MustRegister(MailSendFailure)
	prometheus.MustRegister(MailSendDuration)
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
