package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	entriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studytracker",
		Subsystem: "ledger",
		Name:      "entries_total",
		Help:      "Hours submissions by result (ok, validation, unknown_course, unknown_week, io).",
	}, []string{"result"})
	savesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studytracker",
		Subsystem: "storage",
		Name:      "saves_total",
		Help:      "Ledger saves by result.",
	}, []string{"result"})
	ledgerHours = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "studytracker",
		Subsystem: "ledger",
		Name:      "hours",
		Help:      "Total hours across every fixed course and week.",
	})
)

func init() {
	prometheus.MustRegister(entriesTotal, savesTotal, ledgerHours)
}

// RecordEntry counts a submission outcome.
func RecordEntry(result string) {
	entriesTotal.WithLabelValues(result).Inc()
}

// RecordSave counts a save attempt.
func RecordSave(err error) {
	if err != nil {
		savesTotal.WithLabelValues("error").Inc()
		return
	}
	savesTotal.WithLabelValues("ok").Inc()
}

// SetLedgerHours publishes the current overall total.
func SetLedgerHours(total float64) {
	ledgerHours.Set(total)
}
