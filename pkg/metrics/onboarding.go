package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OnboardingMetrics records wizard-level counters.
type OnboardingMetrics struct {
	reconcileOutcomes *prometheus.CounterVec
	autosaveFailures  prometheus.Counter
	submissions       prometheus.Counter
}

// NewOnboardingMetrics registers the onboarding metrics on the provided registerer.
func NewOnboardingMetrics(reg prometheus.Registerer) *OnboardingMetrics {
	if reg == nil {
		return &OnboardingMetrics{}
	}
	reconcileOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "partnership_reconcile_outcomes_total",
		Help: "Per-item partnership reconciliation outcomes.",
	}, []string{"outcome"})
	autosaveFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wizard_autosave_failures_total",
		Help: "Draft autosave attempts that returned an error.",
	})
	submissions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wizard_submissions_total",
		Help: "Stores submitted for review.",
	})
	reg.MustRegister(reconcileOutcomes, autosaveFailures, submissions)
	return &OnboardingMetrics{
		reconcileOutcomes: reconcileOutcomes,
		autosaveFailures:  autosaveFailures,
		submissions:       submissions,
	}
}

// IncReconcileOutcome counts one reconciliation item result (created,
// terminated, already_existed, failed).
func (m *OnboardingMetrics) IncReconcileOutcome(outcome string) {
	if m == nil || m.reconcileOutcomes == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.reconcileOutcomes.WithLabelValues(outcome).Inc()
}

// IncAutosaveFailure counts one failed draft save.
func (m *OnboardingMetrics) IncAutosaveFailure() {
	if m == nil || m.autosaveFailures == nil {
		return
	}
	m.autosaveFailures.Inc()
}

// IncSubmission counts one final wizard submission.
func (m *OnboardingMetrics) IncSubmission() {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.Inc()
}
